// Package regions holds the static state and district reference lists used to
// partition full-scan queries below the upstream result cap.
package regions

// States lists every Indian state and union territory in the order partitioned
// full scans are issued. The order is stable so concatenated datasets are
// reproducible across runs.
var States = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jammu and Kashmir",
	"Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra",
	"Manipur", "Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli",
	"Daman and Diu", "Lakshadweep", "Delhi", "Puducherry",
}

// districts maps a state to the districts used for secondary partitioning when
// a single state's result count still hits the cap. Only the high-volume
// mandi states are listed; Districts returns nil for the rest, in which case
// the partitioner keeps the possibly-truncated state results and flags the
// partition in the run report.
var districts = map[string][]string{
	"Uttar Pradesh": {
		"Agra", "Aligarh", "Allahabad", "Azamgarh", "Bareilly", "Basti",
		"Chitrakoot", "Devipatan", "Faizabad", "Gorakhpur", "Jhansi", "Kanpur",
		"Lucknow", "Meerut", "Mirzapur", "Moradabad", "Saharanpur", "Varanasi",
	},
	"Maharashtra": {
		"Ahmednagar", "Akola", "Amravati", "Aurangabad", "Beed", "Jalgaon",
		"Kolhapur", "Latur", "Mumbai", "Nagpur", "Nashik", "Pune", "Sangli",
		"Satara", "Sholapur", "Thane", "Wardha", "Yavatmal",
	},
	"Madhya Pradesh": {
		"Bhopal", "Dewas", "Guna", "Gwalior", "Hoshangabad", "Indore",
		"Jabalpur", "Mandsaur", "Rewa", "Sagar", "Satna", "Sehore", "Ujjain",
		"Vidisha",
	},
	"Punjab": {
		"Amritsar", "Barnala", "Bathinda", "Faridkot", "Fazilka", "Ferozepur",
		"Gurdaspur", "Hoshiarpur", "Jalandhar", "Ludhiana", "Moga", "Patiala",
		"Sangrur",
	},
	"Rajasthan": {
		"Ajmer", "Alwar", "Baran", "Bharatpur", "Bikaner", "Bundi", "Jaipur",
		"Jodhpur", "Kota", "Sikar", "Sriganganagar", "Udaipur",
	},
	"Gujarat": {
		"Ahmedabad", "Amreli", "Anand", "Bharuch", "Bhavnagar", "Jamnagar",
		"Junagadh", "Kheda", "Mehsana", "Rajkot", "Surat", "Vadodara",
	},
	"Tamil Nadu": {
		"Coimbatore", "Cuddalore", "Dindigul", "Erode", "Madurai", "Salem",
		"Thanjavur", "Theni", "Tiruchirappalli", "Tirunelveli", "Vellore",
		"Villupuram",
	},
	"Karnataka": {
		"Bangalore", "Belgaum", "Bellary", "Bijapur", "Davangere", "Dharwad",
		"Gulbarga", "Hassan", "Mandya", "Mysore", "Raichur", "Shimoga",
	},
	"West Bengal": {
		"Bankura", "Birbhum", "Burdwan", "Hooghly", "Howrah", "Jalpaiguri",
		"Malda", "Murshidabad", "Nadia", "North 24 Parganas", "Purulia",
	},
	"Haryana": {
		"Ambala", "Bhiwani", "Fatehabad", "Gurgaon", "Hisar", "Jind", "Karnal",
		"Kurukshetra", "Panipat", "Rohtak", "Sirsa", "Sonipat",
	},
}

// Districts returns the district enumeration for a state, or nil when no
// secondary partitioning data is available.
func Districts(state string) []string {
	return districts[state]
}
