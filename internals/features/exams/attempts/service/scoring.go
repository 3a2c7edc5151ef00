package service

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// PointsPerCorrect poin untuk satu jawaban benar.
const PointsPerCorrect = 10

type SlotOption struct {
	ID        uuid.UUID
	Text      string
	IsCorrect bool
}

// Slot satu soal dalam paket, diurutkan menurut package_question_id.
type Slot struct {
	PackageQuestionID uint
	QuestionID        uuid.UUID
	Options           []SlotOption
}

type Match struct {
	Index  int
	Slot   Slot
	Option SlotOption
	Value  string
}

func (m Match) Points() int {
	if m.Option.IsCorrect {
		return PointsPerCorrect
	}
	return 0
}

// MatchAnswers memetakan jawaban {index: teks} ke opsi jawaban.
// Teks dicocokkan persis (case-sensitive). Key harus angka desimal kanonik
// ("1", bukan "01", " 1", atau "+1"); key lain, index di luar jangkauan,
// atau teks yang tidak cocok dengan opsi manapun dilewati.
func MatchAnswers(slots []Slot, answers map[string]string) []Match {
	out := make([]Match, 0, len(answers))
	for k, value := range answers {
		idx, err := strconv.Atoi(k)
		if err != nil || strconv.Itoa(idx) != k || idx < 0 || idx >= len(slots) {
			continue
		}
		slot := slots[idx]
		for _, opt := range slot.Options {
			if opt.Text == value {
				out = append(out, Match{Index: idx, Slot: slot, Option: opt, Value: value})
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type ScoreResult struct {
	Score          int `json:"score"`
	Correct        int `json:"correct"`
	Wrong          int `json:"wrong"`
	Unanswered     int `json:"unanswered"`
	TotalQuestions int `json:"total_questions"`
}

// ComputeScore dari jumlah jawaban tercocok dan jumlah benar.
// score = round(correct/total*100), pembulatan setengah ke atas; 0 kalau total 0.
func ComputeScore(matched, correct, total int) ScoreResult {
	if matched > total {
		matched = total
	}
	if correct > matched {
		correct = matched
	}
	res := ScoreResult{
		Correct:        correct,
		Wrong:          matched - correct,
		Unanswered:     total - matched,
		TotalQuestions: total,
	}
	if total > 0 {
		res.Score = (200*correct + total) / (2 * total)
	}
	return res
}

// ScoreMatches: ComputeScore untuk hasil MatchAnswers.
func ScoreMatches(matches []Match, total int) ScoreResult {
	correct := 0
	for _, m := range matches {
		if m.Option.IsCorrect {
			correct++
		}
	}
	return ComputeScore(len(matches), correct, total)
}
