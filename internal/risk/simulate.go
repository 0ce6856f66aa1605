package risk

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
	"time"
)

// SignalEstimator produces the soil-moisture fraction and NDVI anomaly for a
// field on a given day. The simulation below is the only implementation today;
// a sensor- or satellite-backed source can replace it without touching the
// orchestrator or the assessment engine.
type SignalEstimator interface {
	Estimate(fieldID int64, day time.Time, precipSumMM float64) (soilMoisture, ndviAnomaly float64)
}

// SimulatedEstimator derives both signals from a PRNG seeded by (field id,
// calendar day), so repeated runs on the same day reproduce the same values
// while different fields or days diverge.
type SimulatedEstimator struct{}

func (SimulatedEstimator) Estimate(fieldID int64, day time.Time, precipSumMM float64) (float64, float64) {
	rng := rand.New(rand.NewSource(signalSeed(fieldID, day)))

	moisture := precipSumMM/100.0 + uniform(rng, -0.15, 0.15)
	if moisture < 0 {
		moisture = 0
	}
	if moisture > 1 {
		moisture = 1
	}

	anomaly := uniform(rng, -0.25, 0.25)
	return moisture, anomaly
}

func signalSeed(fieldID int64, day time.Time) int64 {
	y, m, d := day.UTC().Date()

	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(fieldID))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(y)*10000+uint64(m)*100+uint64(d))
	h.Write(buf[:])
	return int64(h.Sum64())
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
