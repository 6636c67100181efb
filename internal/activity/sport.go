package activity

import "strings"

// Sport is the FIT sport enum.
type Sport uint8

// SubSport is the FIT sub_sport enum.
type SubSport uint8

const (
	SportGeneric          Sport = 0
	SportRunning          Sport = 1
	SportCycling          Sport = 2
	SportFitnessEquipment Sport = 4
	SportSwimming         Sport = 5
	SportWalking          Sport = 11
	SportRowing           Sport = 15
	SportHiking           Sport = 17
	SportSailing          Sport = 32
	SportKayaking         Sport = 41
	SportDiving           Sport = 53
)

const (
	SubSportGeneric          SubSport = 0
	SubSportIndoorCycling    SubSport = 6
	SubSportFlexibility      SubSport = 19
	SubSportStrengthTraining SubSport = 20
	SubSportYoga             SubSport = 43
)

type sportPair struct {
	sport Sport
	sub   SubSport
}

// Keys are lower-cased export names.
var sportTable = map[string]sportPair{
	"running":              {SportRunning, SubSportGeneric},
	"cycling":              {SportCycling, SubSportGeneric},
	"swimming":             {SportSwimming, SubSportGeneric},
	"walking":              {SportWalking, SubSportGeneric},
	"hiking":               {SportHiking, SubSportGeneric},
	"strength training":    {SportFitnessEquipment, SubSportStrengthTraining},
	"indoor cycling":       {SportCycling, SubSportIndoorCycling},
	"flexibility training": {SportFitnessEquipment, SubSportFlexibility},
	"yoga":                 {SportFitnessEquipment, SubSportYoga},
	"other":                {SportGeneric, SubSportGeneric},
	"rowing":               {SportRowing, SubSportGeneric},
	"kayaking":             {SportKayaking, SubSportGeneric},
	"sailing":              {SportSailing, SubSportGeneric},
	"diving":               {SportDiving, SubSportGeneric},
}

// LookupSport maps an export sport name to the FIT pair. Matching ignores
// case and surrounding space. Unknown names map to (generic, generic) and
// report false.
func LookupSport(name string) (Sport, SubSport, bool) {
	p, ok := sportTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SportGeneric, SubSportGeneric, false
	}
	return p.sport, p.sub, true
}
