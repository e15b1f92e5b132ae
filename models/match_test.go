package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMatchID(t *testing.T) {
	assert.Equal(t, "7.1.2", GenerateMatchID(7, 1, 2))
	assert.Equal(t, "120.3.16", GenerateMatchID(120, 3, 16))
}

func TestMatchPlayerNumberFor(t *testing.T) {
	p1 := "alice"
	p2 := "bob"
	m := Match{
		Player1Type: PlayerTypePlayer,
		Player2Type: PlayerTypePlayer,
		DiscordID1:  &p1,
		DiscordID2:  &p2,
	}

	n := m.PlayerNumberFor("alice")
	assert.NotNil(t, n)
	assert.Equal(t, PlayerNumber1, *n)

	n = m.PlayerNumberFor("bob")
	assert.NotNil(t, n)
	assert.Equal(t, PlayerNumber2, *n)

	assert.Nil(t, m.PlayerNumberFor("carol"))
}

func TestMatchState(t *testing.T) {
	p1 := "alice"
	m := Match{
		Player1Type: PlayerTypePlayer,
		Player2Type: PlayerTypePending,
		DiscordID1:  &p1,
	}
	assert.Equal(t, MatchStateAwaitingPlayers, m.State())

	m.Player2Type = PlayerTypePlayer
	assert.Equal(t, MatchStateActive, m.State())

	winner := PlayerNumber1
	m.WinnerNumber = &winner
	assert.Equal(t, MatchStateCompleted, m.State())
}

func TestPlayerNumberOpponent(t *testing.T) {
	assert.Equal(t, PlayerNumber2, PlayerNumber1.Opponent())
	assert.Equal(t, PlayerNumber1, PlayerNumber2.Opponent())
}
