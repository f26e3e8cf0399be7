package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Game identifies a supported mini-game.
type Game string

// Supported games. The string value is the storage key.
const (
	Molkky  Game = "molkky"
	KusoGe  Game = "kusoge"
	Bowling Game = "bowling"
	Darts   Game = "darts"
)

// ErrUnknownGame is returned by ParseGame for unsupported names.
var ErrUnknownGame = errors.New("unknown game")

var displayNames = map[Game]string{
	Molkky:  "モルック",
	KusoGe:  "くそげ",
	Bowling: "ボーリング",
	Darts:   "ダーツ",
}

// Games lists the supported games in menu order.
func Games() []Game {
	return []Game{Molkky, KusoGe, Bowling, Darts}
}

// ParseGame accepts either the storage key (case-insensitive) or the display name.
func ParseGame(s string) (Game, error) {
	s = strings.TrimSpace(s)
	key := Game(strings.ToLower(s))
	if _, ok := displayNames[key]; ok {
		return key, nil
	}
	for g, name := range displayNames {
		if name == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Valid reports whether g is a supported game.
func (g Game) Valid() bool {
	_, ok := displayNames[g]
	return ok
}

// DisplayName is the label shown to players.
func (g Game) DisplayName() string {
	if name, ok := displayNames[g]; ok {
		return name
	}
	return string(g)
}

func (g Game) String() string { return string(g) }

// UnmarshalJSON accepts any form understood by ParseGame.
func (g *Game) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseGame(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
