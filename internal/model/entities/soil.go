package entities

import "strings"

// SoilType is one of the five soil classes the classifier can report.
type SoilType string

const (
	SoilAlluvial SoilType = "Alluvial_Soil"
	SoilBlack    SoilType = "Black_Soil"
	SoilLaterite SoilType = "Laterite_Soil"
	SoilRed      SoilType = "Red_Soil"
	SoilYellow   SoilType = "Yellow_Soil"
)

// SoilTypes lists the classes the classifier draws from at random.
var SoilTypes = []SoilType{SoilAlluvial, SoilBlack, SoilLaterite, SoilRed, SoilYellow}

// Keyword is the lower-case filename fragment that identifies the soil.
func (s SoilType) Keyword() string {
	k, _, _ := strings.Cut(string(s), "_")
	return strings.ToLower(k)
}

func (s SoilType) Valid() bool {
	for _, t := range SoilTypes {
		if s == t {
			return true
		}
	}
	return false
}
