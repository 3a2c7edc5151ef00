package constants

import (
	"fmt"

	userModel "soalku_backend/internals/features/users/user/model"
)

const (
	RoleAdmin       = userModel.RoleAdmin
	RoleContributor = userModel.RoleContributor
	RoleValidator   = userModel.RoleValidator
	RoleSubscriber  = userModel.RoleSubscriber
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess      = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyContributorCanAccess = "❌ Hanya kontributor atau admin yang boleh mengakses fitur %s."
	ErrOnlyValidatorCanAccess   = "❌ Hanya validator atau admin yang boleh mengakses fitur %s."
	ErrOnlySubscriberCanAccess  = "❌ Hanya subscriber yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorContributor(feature string) string {
	return fmt.Sprintf(ErrOnlyContributorCanAccess, feature)
}

func RoleErrorValidator(feature string) string {
	return fmt.Sprintf(ErrOnlyValidatorCanAccess, feature)
}

func RoleErrorSubscriber(feature string) string {
	return fmt.Sprintf(ErrOnlySubscriberCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{RoleAdmin, RoleContributor, RoleValidator, RoleSubscriber}

	AdminOnly       = []string{RoleAdmin}
	ContributorRole = []string{RoleContributor, RoleAdmin}
	ValidatorRole   = []string{RoleValidator, RoleAdmin}
	SubscriberRole  = []string{RoleSubscriber}
)
