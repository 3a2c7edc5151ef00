package service

import (
	"context"
	"errors"
	"testing"

	database "soalku_backend/internals/databases"
	categoryModel "soalku_backend/internals/features/master/categories/model"
	subjectModel "soalku_backend/internals/features/master/subjects/model"
	topicModel "soalku_backend/internals/features/master/topics/model"
	"soalku_backend/internals/features/questions/soal/dto"
	"soalku_backend/internals/features/questions/soal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func seedSubject(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	cat := categoryModel.CategoryModel{CategoryName: "Cat " + uuid.NewString()[:6]}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	subj := subjectModel.SubjectModel{SubjectCategoryID: cat.CategoryID, SubjectName: "Kimia"}
	if err := db.Create(&subj).Error; err != nil {
		t.Fatal(err)
	}
	return subj.SubjectID
}

func twoOptions() []dto.OptionInput {
	return []dto.OptionInput{{Text: "H2O", IsCorrect: true}, {Text: "CO2"}}
}

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from model.QuestionStatus
		act  Action
		want model.QuestionStatus
		code int
	}{
		{model.QuestionStatusDraft, ActionSubmit, model.QuestionStatusSubmitted, 0},
		{model.QuestionStatusRejected, ActionSubmit, model.QuestionStatusSubmitted, 0},
		{model.QuestionStatusSubmitted, ActionApprove, model.QuestionStatusApproved, 0},
		{model.QuestionStatusSubmitted, ActionReject, model.QuestionStatusRejected, 0},
		{model.QuestionStatusSubmitted, ActionSubmit, "", 409},
		{model.QuestionStatusApproved, ActionSubmit, "", 409},
		{model.QuestionStatusDraft, ActionApprove, "", 409},
		{model.QuestionStatusApproved, ActionReject, "", 409},
		{model.QuestionStatusRejected, ActionApprove, "", 409},
		{model.QuestionStatusDraft, Action("publish"), "", 400},
	}
	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.act)
		if tc.code == 0 {
			if err != nil || got != tc.want {
				t.Errorf("%s -%s-> got %q err %v, want %q", tc.from, tc.act, got, err, tc.want)
			}
			continue
		}
		if statusOf(err) != tc.code {
			t.Errorf("%s -%s-> want %d, got %v", tc.from, tc.act, tc.code, err)
		}
	}
}

func TestValidateOptions(t *testing.T) {
	cases := []struct {
		name string
		opts []dto.OptionInput
		ok   bool
	}{
		{"valid", twoOptions(), true},
		{"single option", []dto.OptionInput{{Text: "A", IsCorrect: true}}, false},
		{"no correct", []dto.OptionInput{{Text: "A"}, {Text: "B"}}, false},
		{"two correct", []dto.OptionInput{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}}, false},
		{"blank text", []dto.OptionInput{{Text: "A", IsCorrect: true}, {Text: "  "}}, false},
		{"duplicate text", []dto.OptionInput{{Text: "A", IsCorrect: true}, {Text: "A"}}, false},
		{"case differs", []dto.OptionInput{{Text: "a", IsCorrect: true}, {Text: "A"}}, true},
	}
	for _, tc := range cases {
		err := ValidateOptions(tc.opts)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected %v", tc.name, err)
		}
		if !tc.ok && statusOf(err) != fiber.StatusBadRequest {
			t.Errorf("%s: want 400, got %v", tc.name, err)
		}
	}
}

func TestReviewWorkflow(t *testing.T) {
	db := database.OpenTestDB(t)
	svc := NewQuestionService(db)
	ctx := context.Background()
	contributor, validator := uuid.New(), uuid.New()

	q, err := svc.Create(ctx, contributor, dto.CreateQuestionRequest{
		SubjectID: seedSubject(t, db),
		Text:      "Rumus air?",
		Options:   twoOptions(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.QuestionStatus != model.QuestionStatusDraft || len(q.Options) != 2 {
		t.Fatalf("unexpected draft %+v", q)
	}

	// approve langsung dari draft ditolak
	if _, err := svc.Review(ctx, q.QuestionID, validator, ActionApprove, nil); statusOf(err) != 409 {
		t.Fatalf("approve draft: want 409, got %v", err)
	}
	if _, err := svc.Submit(ctx, q.QuestionID, contributor); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Update(ctx, q.QuestionID, contributor, dto.UpdateQuestionRequest{}); statusOf(err) != 409 {
		t.Fatalf("update submitted: want 409, got %v", err)
	}

	if _, err := svc.Review(ctx, q.QuestionID, validator, ActionReject, nil); statusOf(err) != 400 {
		t.Fatalf("reject without note: want 400, got %v", err)
	}
	note := "Opsi kurang jelas"
	rej, err := svc.Review(ctx, q.QuestionID, validator, ActionReject, &note)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rej.QuestionStatus != model.QuestionStatusRejected || rej.QuestionReviewNote == nil || *rej.QuestionReviewNote != note {
		t.Fatalf("unexpected rejected %+v", rej)
	}

	// kontributor revisi lalu kirim ulang
	text := "Rumus kimia air?"
	upd, err := svc.Update(ctx, q.QuestionID, contributor, dto.UpdateQuestionRequest{
		Text:    &text,
		Options: []dto.OptionInput{{Text: "CO2"}, {Text: "H2O", IsCorrect: true}, {Text: "NaCl"}},
	})
	if err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	if upd.QuestionText != text || len(upd.Options) != 3 || upd.Options[1].AnswerOptionText != "H2O" || !upd.Options[1].AnswerOptionIsCorrect {
		t.Fatalf("options not replaced in order: %+v", upd.Options)
	}
	var optCount int64
	db.Model(&model.AnswerOptionModel{}).Where("answer_option_question_id = ?", q.QuestionID).Count(&optCount)
	if optCount != 3 {
		t.Fatalf("old options left behind: %d rows", optCount)
	}

	if _, err := svc.Submit(ctx, q.QuestionID, contributor); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	ok, err := svc.Review(ctx, q.QuestionID, validator, ActionApprove, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if ok.QuestionStatus != model.QuestionStatusApproved || ok.QuestionValidatorID == nil || *ok.QuestionValidatorID != validator {
		t.Fatalf("unexpected approved %+v", ok)
	}
	if _, err := svc.Review(ctx, q.QuestionID, validator, ActionApprove, nil); statusOf(err) != 409 {
		t.Fatalf("approve twice: want 409, got %v", err)
	}
	if _, err := svc.DeleteOwnDraft(ctx, q.QuestionID, contributor); statusOf(err) != 409 {
		t.Fatalf("delete approved: want 409, got %v", err)
	}
}

func TestOwnershipAndRefs(t *testing.T) {
	db := database.OpenTestDB(t)
	svc := NewQuestionService(db)
	ctx := context.Background()
	owner := uuid.New()
	subjectID := seedSubject(t, db)

	if _, err := svc.Create(ctx, owner, dto.CreateQuestionRequest{SubjectID: uuid.New(), Text: "Apa?", Options: twoOptions()}); statusOf(err) != 400 {
		t.Fatalf("unknown subject: want 400, got %v", err)
	}

	// topik yang tidak ditautkan ke subject ditolak
	topic := topicModel.TopicModel{TopicName: "Stoikiometri"}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, owner, dto.CreateQuestionRequest{SubjectID: subjectID, TopicID: &topic.TopicID, Text: "Apa?", Options: twoOptions()}); statusOf(err) != 400 {
		t.Fatalf("unlinked topic: want 400, got %v", err)
	}
	if err := db.Create(&topicModel.TopicSubjectModel{TopicSubjectTopicID: topic.TopicID, TopicSubjectSubjectID: subjectID}).Error; err != nil {
		t.Fatal(err)
	}
	q, err := svc.Create(ctx, owner, dto.CreateQuestionRequest{SubjectID: subjectID, TopicID: &topic.TopicID, Text: "Apa?", Options: twoOptions()})
	if err != nil {
		t.Fatalf("linked topic: %v", err)
	}

	stranger := uuid.New()
	if _, err := svc.Submit(ctx, q.QuestionID, stranger); statusOf(err) != 404 {
		t.Fatalf("stranger submit: want 404, got %v", err)
	}
	if _, err := svc.DeleteOwnDraft(ctx, q.QuestionID, stranger); statusOf(err) != 404 {
		t.Fatalf("stranger delete: want 404, got %v", err)
	}
	if _, err := svc.DeleteOwnDraft(ctx, q.QuestionID, owner); err != nil {
		t.Fatalf("owner delete draft: %v", err)
	}
	var n int64
	db.Model(&model.AnswerOptionModel{}).Where("answer_option_question_id = ?", q.QuestionID).Count(&n)
	if n != 0 {
		t.Fatalf("options should be removed with the question, %d left", n)
	}
}

func TestDelete_InUseIsConflict(t *testing.T) {
	db := database.OpenTestDB(t)
	svc := NewQuestionService(db)
	ctx := context.Background()

	q, err := svc.Create(ctx, uuid.New(), dto.CreateQuestionRequest{SubjectID: seedSubject(t, db), Text: "Apa?", Options: twoOptions()})
	if err != nil {
		t.Fatal(err)
	}
	pkgID := uuid.New()
	if err := db.Exec(`INSERT INTO packages (package_id, package_name, package_duration, package_duration_unit, package_status)
		VALUES (?, 'P', 1, 'days', 'active')`, pkgID).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Exec(`INSERT INTO package_questions (package_question_package_id, package_question_question_id)
		VALUES (?, ?)`, pkgID, q.QuestionID).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Delete(ctx, q.QuestionID); statusOf(err) != 409 {
		t.Fatalf("want 409, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	db := database.OpenTestDB(t)
	svc := NewQuestionService(db)
	ctx := context.Background()
	subjectID := seedSubject(t, db)
	a, b := uuid.New(), uuid.New()

	for i, owner := range []uuid.UUID{a, a, b} {
		q, err := svc.Create(ctx, owner, dto.CreateQuestionRequest{SubjectID: subjectID, Text: []string{"Gaya", "Energi", "Gaya gesek"}[i], Options: twoOptions()})
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			if _, err := svc.Submit(ctx, q.QuestionID, owner); err != nil {
				t.Fatal(err)
			}
		}
	}

	rows, total, err := svc.List(ctx, ListFilter{ContributorID: &a, Limit: 10})
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("own list: total=%d rows=%d err=%v", total, len(rows), err)
	}
	_, total, _ = svc.List(ctx, ListFilter{Status: "submitted", Limit: 10})
	if total != 1 {
		t.Fatalf("submitted: %d", total)
	}
	_, total, _ = svc.List(ctx, ListFilter{Q: "gaya", Limit: 10})
	if total != 2 {
		t.Fatalf("q=gaya: %d", total)
	}
}
