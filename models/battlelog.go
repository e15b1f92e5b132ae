package models

import (
	"strings"
	"time"
)

// battleTimeLayout — формат времени официального API, например "20240815T103000.000Z".
const battleTimeLayout = "20060102T150405.000Z"

// BattleResult — исход одного боя с точки зрения игрока, чей battle log запрошен.
type BattleResult string

const (
	BattleResultVictory BattleResult = "victory"
	BattleResultDefeat  BattleResult = "defeat"
	BattleResultDraw    BattleResult = "draw"
	BattleResultUnknown BattleResult = "unknown"
)

// ParseBattleResult нормализует строку результата из API.
func ParseBattleResult(s string) BattleResult {
	switch strings.ToLower(s) {
	case "victory":
		return BattleResultVictory
	case "defeat":
		return BattleResultDefeat
	case "draw":
		return BattleResultDraw
	}
	return BattleResultUnknown
}

// BattleTypeFriendly — товарищеские бои, не принимаются как доказательство.
const BattleTypeFriendly = "friendly"

// BattleEvent — событие (карта и режим), в рамках которого прошёл бой.
type BattleEvent struct {
	ID   int    `json:"id"`
	Mode string `json:"mode"`
	Map  string `json:"map"`
}

// BattleTeamPlayer — участник боя внутри команды.
type BattleTeamPlayer struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// Battle — содержимое одного боя.
type Battle struct {
	Mode     string               `json:"mode"`
	Type     string               `json:"type"`
	Result   string               `json:"result"`
	Duration int                  `json:"duration"`
	Teams    [][]BattleTeamPlayer `json:"teams"`
}

// BattleLogItem — одна запись battle log из внешнего API. Только читается,
// никогда не сохраняется: потребляется на лету при проверке результата.
type BattleLogItem struct {
	BattleTime string      `json:"battleTime"`
	Event      BattleEvent `json:"event"`
	Battle     Battle      `json:"battle"`
}

// Time разбирает battleTime. Ошибка разбора означает, что запись
// непригодна как доказательство.
func (b BattleLogItem) Time() (time.Time, error) {
	return time.Parse(battleTimeLayout, b.BattleTime)
}

// Result возвращает нормализованный исход боя.
func (b BattleLogItem) Result() BattleResult {
	return ParseBattleResult(b.Battle.Result)
}

// BattleLog — ответ API со списком боёв, самые свежие первыми.
type BattleLog struct {
	Items []BattleLogItem `json:"items"`
}
