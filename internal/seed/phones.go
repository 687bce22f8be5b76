// Package seed holds the starter catalog loaded into an empty database.
package seed

import "github.com/vbonduro/phonegallery/internal/domain"

type entry struct {
	brand     string
	name      string
	yearStart int
	yearEnd   int
	kept      bool
	liked     bool
	image     string
}

var starter = []entry{
	{"Alcatel", "One Touch Easy", 1999, 2001, false, false, "/phones/alcatel-one-touch-easy.jpg"},
	{"Nokia", "3310", 2001, 2003, true, true, "/phones/nokia-3310.jpg"},
	{"Sagem", "MyX-5", 2003, 2004, false, false, "/phones/sagem-myx-5.jpg"},
	{"Motorola", "RAZR V3", 2004, 2006, true, true, "/phones/motorola-razr-v3.jpg"},
	{"Sony Ericsson", "K750i", 2006, 2008, false, true, "/phones/sony-ericsson-k750i.jpg"},
	{"Nokia", "N95", 2008, 2009, true, true, "/phones/nokia-n95.jpg"},
	{"Apple", "iPhone 3GS", 2009, 2011, false, true, "/phones/iphone-3gs.jpg"},
	{"Samsung", "Galaxy S II", 2011, 2013, false, true, "/phones/samsung-galaxy-s2.jpg"},
	{"LG", "Nexus 5", 2013, 2015, true, true, "/phones/lg-nexus-5.jpg"},
	{"Samsung", "Galaxy S6 Edge", 2015, 2017, false, false, "/phones/samsung-galaxy-s6-edge.jpg"},
	{"OnePlus", "5T", 2017, 2019, false, true, "/phones/oneplus-5t.jpg"},
	{"Huawei", "P30 Pro", 2019, 2021, true, true, "/phones/huawei-p30-pro.jpg"},
	{"Google", "Pixel 6", 2021, 2023, false, false, "/phones/google-pixel-6.jpg"},
	{"Apple", "iPhone 15 Pro", 2023, 0, true, true, "/phones/iphone-15-pro.jpg"},
}

// Phones returns a fresh copy of the starter catalog. A zero end year in the
// table means the phone is still in use.
func Phones() []*domain.Phone {
	phones := make([]*domain.Phone, 0, len(starter))
	for _, e := range starter {
		p := &domain.Phone{
			Brand:     e.brand,
			Name:      e.name,
			YearStart: e.yearStart,
			Kept:      e.kept,
			Liked:     e.liked,
			ImagePath: e.image,
		}
		if e.yearEnd != 0 {
			end := e.yearEnd
			p.YearEnd = &end
		}
		phones = append(phones, p)
	}
	return phones
}
