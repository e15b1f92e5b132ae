// Package verification отвечает за проверку результатов матча по battle log:
// отбор допустимых записей (filter) и вынесение вердикта (adjudicator).
// Оба шага — чистые вычисления над уже загруженными данными.
package verification

import (
	"strings"
	"time"

	"github.com/Dosada05/brawl-tournament-system/models"
)

// TagsEquivalent сравнивает игровые теги. Сравнение чувствительно к регистру,
// но буква 'O' и цифра '0' взаимозаменяемы на совпадающих позициях — частая
// ошибка при ручном вводе тега. Теги разной длины никогда не эквивалентны.
//
// Не обобщать на другие пары символов: алфавит тегов содержит только одну
// такую неоднозначность.
func TagsEquivalent(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		c1, c2 := a[i], b[i]
		if c1 == c2 {
			continue
		}
		if (c1 == 'O' && c2 == '0') || (c1 == '0' && c2 == 'O') {
			continue
		}
		return false
	}
	return true
}

// FilterParams — контекст матча, относительно которого отбираются записи.
type FilterParams struct {
	// Player1Tag и Player2Tag — игровые теги обеих сторон матча.
	Player1Tag string
	Player2Tag string
	// Mode — режим турнира; запись должна совпадать и в event, и в battle.
	Mode string
	// NotBefore — момент создания турнира; более старые бои отбрасываются.
	NotBefore time.Time
}

// Filter возвращает подмножество записей battle log, допустимых как
// доказательство для матча. Запись проходит, если выполняются все условия:
//
//  1. время боя не раньше создания турнира;
//  2. режим совпадает с турнирным и в event.mode, и в battle.mode;
//  3. бой не товарищеский (friendly);
//  4. первые слоты двух команд — теги обеих сторон матча, в любом порядке
//     (с учётом эквивалентности O/0).
//
// Порядок исходного списка сохраняется; записи не изменяются.
func Filter(items []models.BattleLogItem, params FilterParams) []models.BattleLogItem {
	admissible := make([]models.BattleLogItem, 0, len(items))

	for _, item := range items {
		ts, err := item.Time()
		if err != nil || ts.Before(params.NotBefore) {
			continue
		}
		if item.Battle.Mode != params.Mode || item.Event.Mode != params.Mode {
			continue
		}
		if isFriendly(item) {
			continue
		}
		if !teamsMatch(item, params.Player1Tag, params.Player2Tag) {
			continue
		}
		admissible = append(admissible, item)
	}

	return admissible
}

func isFriendly(item models.BattleLogItem) bool {
	return strings.ToLower(item.Battle.Type) == models.BattleTypeFriendly
}

// teamsMatch проверяет, что в бою участвовали обе стороны матча: теги в
// первых слотах двух противоборствующих команд совпадают с известными
// тегами в прямом или обратном порядке.
func teamsMatch(item models.BattleLogItem, tag1, tag2 string) bool {
	teams := item.Battle.Teams
	if len(teams) < 2 || len(teams[0]) == 0 || len(teams[1]) == 0 {
		return false
	}
	left, right := teams[0][0].Tag, teams[1][0].Tag
	return TagsEquivalent(left, tag1) && TagsEquivalent(right, tag2) ||
		TagsEquivalent(left, tag2) && TagsEquivalent(right, tag1)
}
