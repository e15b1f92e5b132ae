package verification

import "github.com/Dosada05/brawl-tournament-system/models"

// Verdict — результат разбора отфильтрованных записей.
type Verdict int

const (
	// VerdictInconclusive — порог не достигнут ни одной стороной.
	VerdictInconclusive Verdict = iota
	// VerdictSubmitterWins — побеждает сторона, приславшая battle log.
	VerdictSubmitterWins
	// VerdictOpponentWins — побеждает противоположная сторона.
	VerdictOpponentWins
)

func (v Verdict) String() string {
	switch v {
	case VerdictSubmitterWins:
		return "submitter_wins"
	case VerdictOpponentWins:
		return "opponent_wins"
	}
	return "inconclusive"
}

// HasMinimumEvidence — предварительная проверка: допустимых записей должно
// быть не меньше порога побед, иначе разбор даже не начинается и пользователю
// сообщается "сыграно недостаточно матчей", а не двусмысленный вердикт.
func HasMinimumEvidence(admissibleCount, winsRequired int) bool {
	return admissibleCount >= winsRequired
}

// Adjudicate проходит записи в хронологическом порядке (старые первыми),
// считая победы и поражения с точки зрения приславшей стороны. После каждой
// записи:
//
//   - поражений стало winsRequired, а побед ещё меньше порога — побеждает
//     соперник, разбор останавливается;
//   - побед стало не меньше winsRequired — побеждает приславшая сторона,
//     разбор останавливается.
//
// Ничьи и нераспознанные результаты не двигают счётчики. Если записи
// закончились без достижения порога — вердикт inconclusive.
func Adjudicate(items []models.BattleLogItem, winsRequired int) Verdict {
	victories := 0
	defeats := 0

	for _, item := range items {
		switch item.Result() {
		case models.BattleResultVictory:
			victories++
		case models.BattleResultDefeat:
			defeats++
		}

		if defeats == winsRequired && victories < winsRequired {
			return VerdictOpponentWins
		}
		if victories >= winsRequired {
			return VerdictSubmitterWins
		}
	}

	return VerdictInconclusive
}
