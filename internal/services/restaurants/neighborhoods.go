package restaurants

import "math"

// DefaultNeighborhood is used when a location falls outside every known neighborhood
const DefaultNeighborhood = "San Francisco"

type neighborhood struct {
	name   string
	lat    float64
	lng    float64
	radius float64 // degrees
}

// sfNeighborhoods approximates San Francisco neighborhoods as circles in degree space
var sfNeighborhoods = []neighborhood{
	{"Marina", 37.8015, -122.4368, 0.012},
	{"Pacific Heights", 37.7925, -122.4350, 0.010},
	{"Russian Hill", 37.8011, -122.4194, 0.008},
	{"North Beach", 37.8060, -122.4103, 0.010},
	{"Chinatown", 37.7941, -122.4078, 0.006},
	{"Financial District", 37.7946, -122.3999, 0.008},
	{"SoMa", 37.7785, -122.3950, 0.015},
	{"Mission", 37.7599, -122.4148, 0.015},
	{"Castro", 37.7609, -122.4350, 0.008},
	{"Noe Valley", 37.7502, -122.4337, 0.010},
	{"Hayes Valley", 37.7759, -122.4245, 0.008},
	{"Haight-Ashbury", 37.7692, -122.4481, 0.010},
	{"Richmond", 37.7800, -122.4784, 0.020},
	{"Sunset", 37.7600, -122.4900, 0.020},
	{"Tenderloin", 37.7847, -122.4141, 0.008},
	{"Nob Hill", 37.7930, -122.4161, 0.008},
	{"Japantown", 37.7854, -122.4295, 0.006},
	{"Potrero Hill", 37.7610, -122.3928, 0.010},
	{"Dogpatch", 37.7580, -122.3870, 0.008},
	{"Bernal Heights", 37.7390, -122.4150, 0.010},
	{"Fisherman's Wharf", 37.8080, -122.4177, 0.008},
	{"Union Square", 37.7880, -122.4075, 0.006},
	{"Embarcadero", 37.7955, -122.3930, 0.008},
	{"Outer Sunset", 37.7550, -122.5050, 0.015},
	{"Inner Sunset", 37.7620, -122.4650, 0.010},
	{"Cole Valley", 37.7660, -122.4510, 0.006},
	{"Glen Park", 37.7340, -122.4330, 0.008},
	{"Excelsior", 37.7230, -122.4250, 0.010},
	{"Bayview", 37.7300, -122.3900, 0.012},
	{"Presidio Heights", 37.7880, -122.4520, 0.008},
	{"Lower Haight", 37.7720, -122.4310, 0.005},
	{"Western Addition", 37.7810, -122.4380, 0.008},
	{"Fillmore", 37.7850, -122.4350, 0.006},
}

// InferNeighborhood returns the nearest neighborhood whose radius contains the point
func InferNeighborhood(lat, lng float64) string {
	closest := DefaultNeighborhood
	minDist := math.Inf(1)

	for _, n := range sfNeighborhoods {
		dist := math.Hypot(lat-n.lat, lng-n.lng)
		if dist < n.radius && dist < minDist {
			minDist = dist
			closest = n.name
		}
	}

	return closest
}
