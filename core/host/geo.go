package host

// Geo holds the client geolocation fields a runtime can provide.
// Every field is optional.
type Geo struct {
	IP         string `json:"ip"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	RegionCode string `json:"regionCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Continent  string `json:"continent,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	MetroCode  string `json:"metroCode,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	Latitude   string `json:"latitude,omitempty"`
	Longitude  string `json:"longitude,omitempty"`
}

// GeoFromHeaders builds Geo from the cf-ip* headers an edge proxy in front of
// the server injects.
func GeoFromHeaders(req *Request, ip string) Geo {
	return Geo{
		IP:         ip,
		City:       req.Header("cf-ipcity"),
		Region:     req.Header("cf-region"),
		RegionCode: req.Header("cf-region-code"),
		Country:    req.Header("cf-ipcountry"),
		Continent:  req.Header("cf-ipcontinent"),
		PostalCode: req.Header("cf-postal-code"),
		MetroCode:  req.Header("cf-metro-code"),
		Timezone:   req.Header("cf-timezone"),
		Latitude:   req.Header("cf-iplatitude"),
		Longitude:  req.Header("cf-iplongitude"),
	}
}
