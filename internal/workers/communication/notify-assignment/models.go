// internal/workers/communication/notify-assignment/models.go
package notifyassignment

type Input struct {
	RepresentativeID    string  `json:"representativeId"`
	RepresentativeName  string  `json:"representativeName"`
	RepresentativeEmail string  `json:"representativeEmail"`
	RepresentativePhone string  `json:"representativePhone,omitempty"`
	LocationID          string  `json:"locationId"`
	LocationName        string  `json:"locationName"`
	LocationCity        string  `json:"locationCity,omitempty"`
	DistanceKm          float64 `json:"distanceKm"`
}

type Output struct {
	Success   bool   `json:"success"`
	EmailSent bool   `json:"emailSent"`
	SMSSent   bool   `json:"smsSent"`
	Message   string `json:"message,omitempty"`
}
