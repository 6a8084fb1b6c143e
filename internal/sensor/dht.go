package sensor

import "math/rand"

const (
	minHumidity    = 0
	maxHumidity    = 120
	minTemperature = -40
	maxTemperature = 40
	maxStep        = 10
)

// DHT simulates a humidity/temperature sensor. Each sample moves the previous
// one by at most maxStep in either direction and is clamped to the sensor's
// range.
type DHT struct {
	rnd         *rand.Rand
	humidity    float32
	temperature float32
}

func NewDHT(rnd *rand.Rand) *DHT {
	return &DHT{
		rnd:         rnd,
		humidity:    uniform(rnd, minHumidity, maxHumidity),
		temperature: uniform(rnd, minTemperature, maxTemperature),
	}
}

func (d *DHT) Humidity() float32 {
	d.humidity = clamp(d.humidity+uniform(d.rnd, -maxStep, maxStep), minHumidity, maxHumidity)
	return d.humidity
}

func (d *DHT) Temperature() float32 {
	d.temperature = clamp(d.temperature+uniform(d.rnd, -maxStep, maxStep), minTemperature, maxTemperature)
	return d.temperature
}

func uniform(rnd *rand.Rand, lo, hi float32) float32 {
	return lo + rnd.Float32()*(hi-lo)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
