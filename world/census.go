package world

// Census digit positions, least significant first. The ion storm flag
// is decimal position 7 (the 8th digit, set and cleared by +/-10^7),
// which anchors the rest of the field order:
// MonSu|Rift|Plat|Buoy|Mine|Der|Ast|Com|Ion|Pul|Neb|BH|Planet|NPC|Base|Star.
// That names 16 fields of the 17-digit scalar; the monster count sits
// at the top digit (10^16), leaving position 15 an unused gap between
// rift and monster.
const (
	censusStar = iota
	censusBase
	censusNPC
	censusPlanet
	censusBlackHole
	censusNebula
	censusPulsar
	censusIonStorm
	censusComet
	censusAsteroid
	censusDerelict
	censusMine
	censusBuoy
	censusPlatform
	censusRift
	censusReserved
	censusMonSu
	censusDigitCount
)

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func saturateDigit(count int) int64 {
	if count > 9 {
		return 9
	}
	if count < 0 {
		return 0
	}
	return int64(count)
}

// QuadrantCounts is the raw per-category entity count for one quadrant,
// as gathered by the spatial index rebuild.
type QuadrantCounts struct {
	Star, Base, NPC, Planet, BlackHole, Nebula, Pulsar       int
	Comet, Asteroid, Derelict, Mine, Buoy, Platform, Rift, Monster int
	IonStorm bool
}

// EncodeCensus packs a quadrant's counts into the 17-digit decimal census
// scalar. Each tracked category saturates at digit value 9.
func EncodeCensus(c QuadrantCounts) int64 {
	var v int64
	v += saturateDigit(c.Star) * pow10(censusStar)
	v += saturateDigit(c.Base) * pow10(censusBase)
	v += saturateDigit(c.NPC) * pow10(censusNPC)
	v += saturateDigit(c.Planet) * pow10(censusPlanet)
	v += saturateDigit(c.BlackHole) * pow10(censusBlackHole)
	v += saturateDigit(c.Nebula) * pow10(censusNebula)
	v += saturateDigit(c.Pulsar) * pow10(censusPulsar)
	v += saturateDigit(c.Comet) * pow10(censusComet)
	v += saturateDigit(c.Asteroid) * pow10(censusAsteroid)
	v += saturateDigit(c.Derelict) * pow10(censusDerelict)
	v += saturateDigit(c.Mine) * pow10(censusMine)
	v += saturateDigit(c.Buoy) * pow10(censusBuoy)
	v += saturateDigit(c.Platform) * pow10(censusPlatform)
	v += saturateDigit(c.Rift) * pow10(censusRift)
	v += saturateDigit(c.Monster) * pow10(censusMonSu)
	if c.IonStorm {
		v += pow10(censusIonStorm)
	}
	return v
}

// HasIonStorm reports whether the ion storm digit is set in a census
// value. Supernova-overridden (negative) values never carry the flag.
func HasIonStorm(census int64) bool {
	if census < 0 {
		return false
	}
	return (census/pow10(censusIonStorm))%10 >= 1
}

// SetIonStorm adds (or, if clear is true, removes) the ion storm flag on
// an existing census value, leaving every other digit untouched.
func SetIonStorm(census int64, set bool) int64 {
	if census < 0 {
		return census // supernova override takes precedence
	}
	flagValue := pow10(censusIonStorm)
	digit := (census / flagValue) % 10
	if set {
		if digit < 1 {
			return census + flagValue
		}
		return census
	}
	if digit >= 1 {
		return census - flagValue
	}
	return census
}

// SupernovaOverrideCensus returns the signaling value used while a
// supernova is counting down in a quadrant: the negation of the
// remaining timer.
func SupernovaOverrideCensus(remainingTicks int) int64 {
	return -int64(remainingTicks)
}

// SupernovaAftermathCensus is the census value written once a supernova
// completes: one black hole, zero everything else.
func SupernovaAftermathCensus() int64 {
	return saturateDigit(1) * pow10(censusBlackHole)
}
