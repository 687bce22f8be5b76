package domain

import (
	"strings"
	"time"
)

// DataURLPrefix marks an image value that carries the encoded image itself
// rather than a path to a hosted file.
const DataURLPrefix = "data:"

// IsDataURL reports whether image is an embedded data URL.
func IsDataURL(image string) bool {
	return strings.HasPrefix(image, DataURLPrefix)
}

// Phone is one entry in the catalog as it is stored.
type Phone struct {
	ID        int64
	Brand     string
	Name      string
	YearStart int
	YearEnd   *int
	Kept      bool
	Liked     bool
	ImagePath string
	ImageData *string
	Specs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolvedImage returns the embedded image when present, otherwise the path.
func (p *Phone) ResolvedImage() string {
	if p.ImageData != nil && *p.ImageData != "" {
		return *p.ImageData
	}
	return p.ImagePath
}

// IsCurrent reports whether the phone has no end year.
func (p *Phone) IsCurrent() bool {
	return p.YearEnd == nil
}

// Specs holds the free-form specification fields. A nil field means the value
// was never recorded.
type Specs struct {
	Review *string `json:"review"`

	// Network and launch
	NetworkTechnology       *string `json:"networkTechnology"`
	LaunchDateInternational *string `json:"launchDateInternational"`
	LaunchDateFrance        *string `json:"launchDateFrance"`

	// Body
	Dimensions *string `json:"dimensions"`
	Weight     *string `json:"weight"`
	SIM        *string `json:"sim"`

	// Display
	DisplayType       *string `json:"displayType"`
	DisplaySize       *string `json:"displaySize"`
	DisplayResolution *string `json:"displayResolution"`
	DisplayProtection *string `json:"displayProtection"`

	// Platform
	OS        *string `json:"os"`
	OSVersion *string `json:"osVersion"`
	Chipset   *string `json:"chipset"`
	CPU       *string `json:"cpu"`
	GPU       *string `json:"gpu"`

	// Memory
	InternalMemory *string `json:"internalMemory"`
	RAM            *string `json:"ram"`

	// Cameras
	MainCameraSpecs   *string `json:"mainCameraSpecs"`
	MainCameraVideo   *string `json:"mainCameraVideo"`
	SelfieCameraSpecs *string `json:"selfieCameraSpecs"`
	SelfieCameraVideo *string `json:"selfieCameraVideo"`

	// Sound
	Speakers *string `json:"speakers"`
	Jack35mm *string `json:"jack35mm"`

	// Communication
	WLAN         *string `json:"wlan"`
	Bluetooth    *string `json:"bluetooth"`
	Positioning  *string `json:"positioning"`
	NFC          *string `json:"nfc"`
	InfraredPort *string `json:"infraredPort"`
	Radio        *string `json:"radio"`
	USB          *string `json:"usb"`

	Sensors *string `json:"sensors"`

	// Battery
	BatteryType     *string `json:"batteryType"`
	BatteryCapacity *string `json:"batteryCapacity"`

	// My unit
	MyPhoneColor   *string `json:"myPhoneColor"`
	MyPhoneStorage *string `json:"myPhoneStorage"`
}

// Normalize replaces blank values with nil and trims the rest.
func (s *Specs) Normalize() {
	for _, f := range s.Fields() {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
			continue
		}
		*f = &v
	}
}

// Fields returns pointers to every specification field in column order.
func (s *Specs) Fields() []**string {
	return []**string{
		&s.Review,
		&s.NetworkTechnology,
		&s.LaunchDateInternational,
		&s.LaunchDateFrance,
		&s.Dimensions,
		&s.Weight,
		&s.SIM,
		&s.DisplayType,
		&s.DisplaySize,
		&s.DisplayResolution,
		&s.DisplayProtection,
		&s.OS,
		&s.OSVersion,
		&s.Chipset,
		&s.CPU,
		&s.GPU,
		&s.InternalMemory,
		&s.RAM,
		&s.MainCameraSpecs,
		&s.MainCameraVideo,
		&s.SelfieCameraSpecs,
		&s.SelfieCameraVideo,
		&s.Speakers,
		&s.Jack35mm,
		&s.WLAN,
		&s.Bluetooth,
		&s.Positioning,
		&s.NFC,
		&s.InfraredPort,
		&s.Radio,
		&s.USB,
		&s.Sensors,
		&s.BatteryType,
		&s.BatteryCapacity,
		&s.MyPhoneColor,
		&s.MyPhoneStorage,
	}
}

// SpecColumns lists the specification columns in the same order as Fields.
var SpecColumns = []string{
	"review",
	"network_technology",
	"launch_date_international",
	"launch_date_france",
	"dimensions",
	"weight",
	"sim",
	"display_type",
	"display_size",
	"display_resolution",
	"display_protection",
	"os",
	"os_version",
	"chipset",
	"cpu",
	"gpu",
	"internal_memory",
	"ram",
	"main_camera_specs",
	"main_camera_video",
	"selfie_camera_specs",
	"selfie_camera_video",
	"speakers",
	"jack_35mm",
	"wlan",
	"bluetooth",
	"positioning",
	"nfc",
	"infrared_port",
	"radio",
	"usb",
	"sensors",
	"battery_type",
	"battery_capacity",
	"my_phone_color",
	"my_phone_storage",
}
