package receipts

// Station is a fuel outlet printed on a receipt.
type Station struct {
	Name    string `json:"name" mapstructure:"name"`
	Address string `json:"address" mapstructure:"address"`
}

var defaultCatalog = []Station{
	{
		Name:    "Rajasthan Rajpath Filling Station",
		Address: "Lock No 349, NH 8, Samalkha, New Delhi - 110037",
	},
	{
		Name:    "IndianOil Smart Fuel Station",
		Address: "Plot 21, Ring Road, Sector 18, Gurgaon - 122015",
	},
	{
		Name:    "Highway Service Station",
		Address: "NH 48, Near Toll Plaza, Manesar, Haryana - 122051",
	},
	{
		Name:    "City Point Fuel Centre",
		Address: "23 MG Road, Connaught Place, New Delhi - 110001",
	},
	{
		Name:    "Metro Petro Pump",
		Address: "Plot 5, Outer Ring Road, Rohini, New Delhi - 110085",
	},
}

// DefaultCatalog returns a copy of the built-in station list.
func DefaultCatalog() []Station {
	out := make([]Station, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}
