package world

import "testing"

func TestEncodeCensusDigits(t *testing.T) {
	tests := []struct {
		name string
		c    QuadrantCounts
		want int64
	}{
		{"empty", QuadrantCounts{}, 0},
		{"one star", QuadrantCounts{Star: 1}, 1},
		{"one base", QuadrantCounts{Base: 1}, 10},
		{"one npc", QuadrantCounts{NPC: 1}, 100},
		{"one planet", QuadrantCounts{Planet: 1}, 1000},
		{"one black hole", QuadrantCounts{BlackHole: 1}, 10000},
		{"supernova aftermath shape", QuadrantCounts{BlackHole: 1}, SupernovaAftermathCensus()},
		{"ion storm flag", QuadrantCounts{IonStorm: true}, 10000000},
		{"star saturates at 9", QuadrantCounts{Star: 40}, 9},
		{"mixed", QuadrantCounts{Star: 3, Base: 1, Planet: 2}, 2013},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeCensus(tt.c); got != tt.want {
				t.Errorf("EncodeCensus(%+v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestCensusDigitNeverExceedsNine(t *testing.T) {
	c := QuadrantCounts{
		Star: 100, Base: 100, NPC: 100, Planet: 100, BlackHole: 100,
		Nebula: 100, Pulsar: 100, Comet: 100, Asteroid: 100, Derelict: 100,
		Mine: 100, Buoy: 100, Platform: 100, Rift: 100, Monster: 100,
		IonStorm: true,
	}
	v := EncodeCensus(c)
	for v > 0 {
		if d := v % 10; d > 9 {
			t.Fatalf("digit %d exceeds 9", d)
		}
		v /= 10
	}
}

func TestIonStormFlag(t *testing.T) {
	base := EncodeCensus(QuadrantCounts{Star: 2, Planet: 1})

	marked := SetIonStorm(base, true)
	if !HasIonStorm(marked) {
		t.Error("HasIonStorm false after set")
	}
	if marked != base+10000000 {
		t.Errorf("set added %d, want 10^7", marked-base)
	}
	if again := SetIonStorm(marked, true); again != marked {
		t.Error("setting an already-set flag changed the census")
	}

	cleared := SetIonStorm(marked, false)
	if cleared != base {
		t.Errorf("clear = %d, want %d", cleared, base)
	}
	if again := SetIonStorm(cleared, false); again != cleared {
		t.Error("clearing an already-clear flag changed the census")
	}
}

func TestSupernovaOverride(t *testing.T) {
	v := SupernovaOverrideCensus(1234)
	if v != -1234 {
		t.Errorf("override = %d, want -1234", v)
	}
	if HasIonStorm(v) {
		t.Error("supernova override must not report an ion storm")
	}
	if SetIonStorm(v, true) != v {
		t.Error("supernova override must win over the ion storm flag")
	}
}
