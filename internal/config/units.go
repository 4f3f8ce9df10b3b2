package config

import "github.com/wildstyl3r/holoscat/internal/utils"

var unitToSI = map[string]float64{
	"m":  1,    // [m]
	"cm": 1e-2, // [m]
	"mm": 1e-3, // [m]
	"um": 1e-6, // [m]
	"nm": 1e-9, // [m]
}

type UnitClass int

const (
	Length UnitClass = iota
)

var unitsInClass = map[UnitClass][]string{
	Length: {"nm", "um", "mm", "cm", "m"},
}

var classesOfUnits = map[string]UnitClass{
	"m":  Length,
	"cm": Length,
	"mm": Length,
	"um": Length,
	"nm": Length,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

var defaultUnits = []string{"um"}

// checkUnits fills in default units for classes the list does not mention.
// Units that repeat a class, or that are not known at all, are conflicts.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// SI converts v expressed in units to SI when direct is set, and back from SI
// otherwise.
func SI(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToSI[*unit]
			}
		} else {
			for range absPower {
				v /= unitToSI[*unit]
			}
		}
	}
	return v
}
