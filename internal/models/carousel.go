package models

// CarouselSlide is a home-page slide with its own image asset.
type CarouselSlide struct {
	BaseModel
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
}
