package analytics

import (
	"fmt"
	"strconv"

	"eco-route-service/internal/geo"
)

type DistanceUnit string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
)

type EmissionsUnit string

const (
	CO2   EmissionsUnit = "co2"
	Trees EmissionsUnit = "trees"
)

// Formatter renders metrics in the operator's active display units.
type Formatter struct {
	DistanceUnit  DistanceUnit
	EmissionsUnit EmissionsUnit
}

// ParseFormatter validates unit names; empty values fall back to km and co2.
func ParseFormatter(distance, emissions string) (Formatter, error) {
	f := Formatter{DistanceUnit: Kilometers, EmissionsUnit: CO2}

	switch DistanceUnit(distance) {
	case "":
	case Kilometers, Miles:
		f.DistanceUnit = DistanceUnit(distance)
	default:
		return Formatter{}, fmt.Errorf("parse formatter: unknown distance unit %q", distance)
	}

	switch EmissionsUnit(emissions) {
	case "":
	case CO2, Trees:
		f.EmissionsUnit = EmissionsUnit(emissions)
	default:
		return Formatter{}, fmt.Errorf("parse formatter: unknown emissions unit %q", emissions)
	}

	return f, nil
}

func (f Formatter) Distance(km int) string {
	if f.DistanceUnit == Miles {
		return fmt.Sprintf("%.1f mi", geo.KmToMiles(float64(km)))
	}
	return fmt.Sprintf("%d km", km)
}

// Emissions renders kg CO2. Pounds follow the miles distance unit.
func (f Formatter) Emissions(kg float64) string {
	if f.EmissionsUnit == Trees {
		return fmt.Sprintf("%.1f trees/year", geo.KgToTrees(kg))
	}
	if f.DistanceUnit == Miles {
		return fmt.Sprintf("%.1f lbs CO₂", geo.KgToLbs(kg))
	}
	return strconv.FormatFloat(kg, 'f', -1, 64) + " kg CO₂"
}

func (f Formatter) Cost(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func (f Formatter) Percent(p float64) string {
	return FormatPercent(p) + "%"
}
