package dataset

import "github.com/paulmach/orb"

// Built-in Hualien survey data, used when no data directory is supplied.

func defaultFacilities() FacilitySet {
	return FacilitySet{
		Ramps: []Facility{
			{Location: orb.Point{121.605, 23.976}, Type: "ramp", Description: "curb ramp"},
			{Location: orb.Point{121.609, 23.975}, Type: "ramp", Description: "sidewalk ramp"},
		},
		Elevators: []Facility{
			{Location: orb.Point{121.607, 23.978}, Type: "elevator", Description: "public elevator"},
		},
		Toilets: []Facility{
			{Location: orb.Point{121.606, 23.979}, Type: "toilet", Description: "accessible toilet"},
		},
	}
}

func defaultRoads() []AccessibleRoad {
	return []AccessibleRoad{
		{
			ID:   "road-1",
			Name: "Zhongshan Rd",
			Line: orb.LineString{
				{121.602, 23.974}, {121.603, 23.975}, {121.604, 23.976},
				{121.605, 23.977}, {121.606, 23.978}, {121.607, 23.979},
			},
			Width: 1.5, Incline: 0.02, Surface: "paved", HasRamp: true,
		},
		{
			ID:   "road-2",
			Name: "Zhongzheng Rd",
			Line: orb.LineString{
				{121.608, 23.973}, {121.609, 23.974}, {121.610, 23.975},
				{121.611, 23.976}, {121.612, 23.977},
			},
			Width: 1.2, Incline: 0.05, Surface: "paved", HasRamp: true,
		},
		{
			ID:   "road-3",
			Name: "Guolian 1st Rd",
			Line: orb.LineString{
				{121.604, 23.980}, {121.605, 23.981}, {121.606, 23.982},
				{121.607, 23.983}, {121.608, 23.984},
			},
			Width: 1.8, Incline: 0.03, Surface: "paved", HasRamp: true,
		},
	}
}

func defaultHazards() []Hazard {
	return []Hazard{
		{Type: "stairs", Location: orb.Point{121.606, 23.977}},
		{Type: "steep_slope", Location: orb.Point{121.610, 23.978}},
		{Type: "narrow_path", Location: orb.Point{121.603, 23.982}},
	}
}
