package domain

import (
	"encoding/json"
	"fmt"
)

// Difficulty values are ordered by rank: Normal < Heroic < Mythic. The
// upstream numeric codes are mapped through DifficultyFromCode and never
// compared directly.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyNormal
	DifficultyHeroic
	DifficultyMythic
)

// upstream difficulty codes
const (
	upstreamNormal = 3
	upstreamHeroic = 4
	upstreamMythic = 5
)

func DifficultyFromCode(code int) Difficulty {
	switch code {
	case upstreamNormal:
		return DifficultyNormal
	case upstreamHeroic:
		return DifficultyHeroic
	case upstreamMythic:
		return DifficultyMythic
	}
	return DifficultyUnknown
}

// Code returns the upstream numeric difficulty code.
func (d Difficulty) Code() int {
	switch d {
	case DifficultyNormal:
		return upstreamNormal
	case DifficultyHeroic:
		return upstreamHeroic
	case DifficultyMythic:
		return upstreamMythic
	}
	return 0
}

func (d Difficulty) Rank() int {
	return int(d)
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyNormal:
		return "Normal"
	case DifficultyHeroic:
		return "Heroic"
	case DifficultyMythic:
		return "Mythic"
	}
	return "Unknown"
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "Normal":
		return DifficultyNormal, nil
	case "Heroic":
		return DifficultyHeroic, nil
	case "Mythic":
		return DifficultyMythic, nil
	case "Unknown", "":
		return DifficultyUnknown, nil
	}
	return DifficultyUnknown, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Difficulty) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
