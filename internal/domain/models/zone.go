package models

// Zone is one row of the taxi zone lookup table.
type Zone struct {
	LocationID  int64  `csv:"LocationID"`
	Borough     string `csv:"Borough"`
	Zone        string `csv:"Zone"`
	ServiceZone string `csv:"service_zone"`
}

// ZoneColumns are the relational column names, matching the source header.
var ZoneColumns = []Column{
	{Name: "LocationID", Type: TypeInt},
	{Name: "Borough", Type: TypeString},
	{Name: "Zone", Type: TypeString},
	{Name: "service_zone", Type: TypeString},
}
