// Package catalog holds the static set of professions a customer can request
// and a professional can register under. The list is fixed at build time and
// kept sorted so membership checks are a binary search.
package catalog

import "sort"

var professions = []string{
	"AC Repair", "Aluminium Work", "App Developer", "Appliance Repair",
	"Astrologer", "Baby Sitter", "Bike Taxi", "Bodyguard", "Bouncer",
	"CCTV Installer", "Car Driver", "Car Washer", "Carpenter",
	"Chartered Accountant", "Chef at Home", "Chimney Repair", "DJ for Party",
	"Dance Teacher", "Data Recovery Expert", "Delivery Partner", "Dog Walker",
	"Drum Instructor", "Dry Cleaning", "Elderly Care", "Electrician",
	"Event Decorator", "Event Planner", "False Ceiling Expert",
	"Foreign Language Teacher", "Gardener", "Glass Cutter", "Graphic Designer",
	"Guitar Teacher", "Hair Stylist", "Home Cleaner", "IELTS Trainer",
	"Interior Designer", "Inverter Repair", "Key Maker", "Laptop Repair",
	"Lawyer", "Locksmith", "Makeup Artist", "Mason (Mistry)", "Massage for Men",
	"Math Tutor", "Mechanic", "Microwave Repair", "Mobile Repair",
	"Network Engineer", "Notary Service", "Nurse at Home", "Nutritionist",
	"Packers & Movers", "Painter", "Pandit Ji", "Pest Control", "Pet Groomer",
	"Physics Tutor", "Physiotherapist", "Piano Teacher", "Plumber",
	"Private Tutor", "RO Service", "Roofer", "SEO Expert", "Security Guard",
	"Social Media Manager", "Solar Panel Tech", "Tailor", "Tattoo Artist",
	"Tax Consultant", "Tile Layer", "UI/UX Designer", "VFX Artist",
	"Vaastu Consultant", "Video Editor", "Wall Paper Expert", "Web Developer",
	"Welder", "Yoga Trainer", "Zumba Instructor",
}

// Valid reports whether name is a known profession.
func Valid(name string) bool {
	i := sort.SearchStrings(professions, name)
	return i < len(professions) && professions[i] == name
}

// All returns a copy of the full sorted profession list.
func All() []string {
	return append([]string(nil), professions...)
}
