package models

// PlayerProfile — профиль игрока из внешнего API (только чтение).
type PlayerProfile struct {
	Tag                   string      `json:"tag"`
	Name                  string      `json:"name"`
	Club                  *Club       `json:"club,omitempty"`
	Icon                  ProfileIcon `json:"icon"`
	Trophies              int         `json:"trophies"`
	HighestTrophies       int         `json:"highestTrophies"`
	ExpLevel              int         `json:"expLevel"`
	ThreeVsThreeVictories int         `json:"3vs3Victories"`
	SoloVictories         int         `json:"soloVictories"`
	DuoVictories          int         `json:"duoVictories"`
}

type ProfileIcon struct {
	ID int `json:"id"`
}

type Club struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}
