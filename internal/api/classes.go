package api

import (
	"strings"
	"unicode"

	"wcl-enricher/internal/domain"
)

// Warcraft Logs numbers classes alphabetically (with later additions
// appended), not in the in-game class id order. Death Knight is 1 here but 6
// in game.
var classNames = map[int]string{
	1:  "Death Knight",
	2:  "Druid",
	3:  "Hunter",
	4:  "Mage",
	5:  "Monk",
	6:  "Paladin",
	7:  "Priest",
	8:  "Rogue",
	9:  "Shaman",
	10: "Warlock",
	11: "Warrior",
	12: "Demon Hunter",
	13: "Evoker",
}

func ClassName(classID int) (string, bool) {
	name, ok := classNames[classID]
	return name, ok
}

var specRoles = map[string]domain.Role{
	"Blood":        domain.RoleTank,
	"Vengeance":    domain.RoleTank,
	"Guardian":     domain.RoleTank,
	"Brewmaster":   domain.RoleTank,
	"Protection":   domain.RoleTank,
	"Restoration":  domain.RoleHealer,
	"Holy":         domain.RoleHealer,
	"Discipline":   domain.RoleHealer,
	"Mistweaver":   domain.RoleHealer,
	"Preservation": domain.RoleHealer,
}

// SpecRole maps a spec name to its role; anything not a tank or healer spec
// is DPS.
func SpecRole(spec string) domain.Role {
	if role, ok := specRoles[spec]; ok {
		return role
	}
	return domain.RoleDPS
}

// SpecDisplayName splits upstream CamelCase spec names ("BeastMastery").
func SpecDisplayName(spec string) string {
	var b strings.Builder
	for i, c := range spec {
		if i > 0 && unicode.IsUpper(c) {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}
