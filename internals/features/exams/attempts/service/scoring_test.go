package service

import (
	"testing"

	"github.com/google/uuid"
)

func opt(text string, correct bool) SlotOption {
	return SlotOption{ID: uuid.New(), Text: text, IsCorrect: correct}
}

func geoSlots() []Slot {
	return []Slot{
		{PackageQuestionID: 1, QuestionID: uuid.New(), Options: []SlotOption{opt("Paris", true), opt("Lyon", false)}},
		{PackageQuestionID: 2, QuestionID: uuid.New(), Options: []SlotOption{opt("41", false), opt("43", true)}},
	}
}

func TestMatchAnswers_UnmatchedTextIsUnanswered(t *testing.T) {
	slots := geoSlots()
	matches := MatchAnswers(slots, map[string]string{"0": "Paris", "1": "42"})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Index != 0 || matches[0].Points() != PointsPerCorrect {
		t.Fatalf("unexpected match %+v", matches[0])
	}

	res := ScoreMatches(matches, len(slots))
	want := ScoreResult{Score: 50, Correct: 1, Wrong: 0, Unanswered: 1, TotalQuestions: 2}
	if res != want {
		t.Fatalf("got %+v, want %+v", res, want)
	}
}

func TestMatchAnswers_SkipsMalformedAndCaseMismatch(t *testing.T) {
	slots := geoSlots()
	matches := MatchAnswers(slots, map[string]string{
		"x":  "Paris",
		"-1": "Paris",
		"2":  "Paris",
		"0":  "paris",
		"1":  "41",
	})
	if len(matches) != 1 || matches[0].Index != 1 {
		t.Fatalf("expected only index 1 matched, got %+v", matches)
	}
	if matches[0].Points() != 0 {
		t.Fatal("wrong option must carry 0 points")
	}
	res := ScoreMatches(matches, len(slots))
	if res.Correct != 0 || res.Wrong != 1 || res.Unanswered != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestMatchAnswers_OnlyCanonicalIndexKeys(t *testing.T) {
	slots := geoSlots()
	matches := MatchAnswers(slots, map[string]string{
		" 0": "Paris",
		"+0": "Paris",
		"01": "43",
		"1 ": "43",
		"1":  "41",
	})
	if len(matches) != 1 {
		t.Fatalf("expected only key 1 matched, got %+v", matches)
	}
	if matches[0].Index != 1 || matches[0].Value != "41" {
		t.Fatalf("unexpected match %+v", matches[0])
	}
	res := ScoreMatches(matches, len(slots))
	if res.Correct != 0 || res.Wrong != 1 || res.Unanswered != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		matched, correct, total int
		want                    ScoreResult
	}{
		{0, 0, 0, ScoreResult{}},
		{3, 3, 3, ScoreResult{Score: 100, Correct: 3, TotalQuestions: 3}},
		{3, 1, 3, ScoreResult{Score: 33, Correct: 1, Wrong: 2, TotalQuestions: 3}},
		{3, 2, 3, ScoreResult{Score: 67, Correct: 2, Wrong: 1, TotalQuestions: 3}},
		{1, 1, 8, ScoreResult{Score: 13, Correct: 1, Unanswered: 7, TotalQuestions: 8}},
		{2, 1, 200, ScoreResult{Score: 1, Correct: 1, Wrong: 1, Unanswered: 198, TotalQuestions: 200}},
	}
	for _, tc := range cases {
		got := ComputeScore(tc.matched, tc.correct, tc.total)
		if got != tc.want {
			t.Errorf("ComputeScore(%d,%d,%d) = %+v, want %+v", tc.matched, tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestComputeScore_CountsAlwaysAddUp(t *testing.T) {
	for total := 0; total <= 25; total++ {
		for matched := 0; matched <= total; matched++ {
			for correct := 0; correct <= matched; correct++ {
				r := ComputeScore(matched, correct, total)
				if r.Correct+r.Wrong+r.Unanswered != r.TotalQuestions {
					t.Fatalf("counts do not add up: %+v", r)
				}
				if r.Score < 0 || r.Score > 100 {
					t.Fatalf("score out of range: %+v", r)
				}
			}
		}
	}
}
