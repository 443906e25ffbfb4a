package vendors

// DefaultDictionary returns the built-in vendor reference table. Descriptors
// are the strings banks actually print; a [LOCATION] placeholder marks
// descriptors that carry a store location after the '*'.
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultRecords)
}

var defaultRecords = []Record{
	{
		Brand:       "Amazon",
		Category:    "Shopping",
		Subcategory: "Online Shopping",
		CompanyName: "Amazon Seller Services Pvt Ltd",
		Descriptors: []string{"amazon", "amazon india", "amazon pay", "amzn mktp", "www amazon in"},
	},
	{
		Brand:       "Flipkart",
		Category:    "Shopping",
		Subcategory: "Online Shopping",
		CompanyName: "Flipkart Internet Pvt Ltd",
		Descriptors: []string{"flipkart", "fkrt", "flipkart payments"},
	},
	{
		Brand:       "Myntra",
		Category:    "Shopping",
		Subcategory: "Clothing",
		CompanyName: "Myntra Designs Pvt Ltd",
		Descriptors: []string{"myntra", "myntra designs"},
	},
	{
		Brand:       "DMart",
		Category:    "Groceries",
		Subcategory: "Supermarket",
		CompanyName: "Avenue Supermarts Ltd",
		Descriptors: []string{"dmart*[location]", "avenue supermarts", "dmart retail"},
	},
	{
		Brand:       "BigBasket",
		Category:    "Groceries",
		Subcategory: "Online Groceries",
		CompanyName: "Supermarket Grocery Supplies Pvt Ltd",
		Descriptors: []string{"bigbasket", "big basket", "bbdaily"},
	},
	{
		Brand:       "Blinkit",
		Category:    "Groceries",
		Subcategory: "Online Groceries",
		CompanyName: "Blink Commerce Pvt Ltd",
		Descriptors: []string{"blinkit", "grofers"},
	},
	{
		Brand:       "Zomato",
		Category:    "Food & Dining",
		Subcategory: "Food Delivery",
		CompanyName: "Zomato Ltd",
		Descriptors: []string{"zomato", "zomato online", "zomato*[location]"},
	},
	{
		Brand:       "Swiggy",
		Category:    "Food & Dining",
		Subcategory: "Food Delivery",
		CompanyName: "Bundl Technologies Pvt Ltd",
		Descriptors: []string{"swiggy", "swiggy instamart", "swiggy*[location]"},
	},
	{
		Brand:       "Starbucks",
		Category:    "Food & Dining",
		Subcategory: "Coffee",
		CompanyName: "Tata Starbucks Pvt Ltd",
		Descriptors: []string{"starbucks", "starbucks*[location]", "tata starbucks"},
	},
	{
		Brand:       "McDonald's",
		Category:    "Food & Dining",
		Subcategory: "Fast Food",
		CompanyName: "Hardcastle Restaurants Pvt Ltd",
		Descriptors: []string{"mcdonalds", "mcdonald s", "mcd*[location]"},
	},
	{
		Brand:       "Domino's",
		Category:    "Food & Dining",
		Subcategory: "Fast Food",
		CompanyName: "Jubilant FoodWorks Ltd",
		Descriptors: []string{"dominos", "dominos pizza", "jubilant foodworks"},
	},
	{
		Brand:       "Uber",
		Category:    "Transport",
		Subcategory: "Ride Hailing",
		CompanyName: "Uber India Systems Pvt Ltd",
		Descriptors: []string{"uber", "uber india", "uber trip", "uber*[location]"},
	},
	{
		Brand:       "Ola",
		Category:    "Transport",
		Subcategory: "Ride Hailing",
		CompanyName: "ANI Technologies Pvt Ltd",
		Descriptors: []string{"ola", "olacabs", "ola money"},
	},
	{
		Brand:       "IRCTC",
		Category:    "Travel",
		Subcategory: "Rail",
		CompanyName: "Indian Railway Catering and Tourism Corporation",
		Descriptors: []string{"irctc", "irctc web", "indian railway"},
	},
	{
		Brand:       "IndiGo",
		Category:    "Travel",
		Subcategory: "Flights",
		CompanyName: "InterGlobe Aviation Ltd",
		Descriptors: []string{"indigo", "interglobe aviation", "goindigo"},
	},
	{
		Brand:       "Netflix",
		Category:    "Entertainment",
		Subcategory: "Streaming",
		CompanyName: "Netflix Entertainment Services India LLP",
		Descriptors: []string{"netflix", "netflix com"},
	},
	{
		Brand:       "Spotify",
		Category:    "Entertainment",
		Subcategory: "Streaming",
		CompanyName: "Spotify India LLP",
		Descriptors: []string{"spotify", "spotify ab"},
	},
	{
		Brand:       "BookMyShow",
		Category:    "Entertainment",
		Subcategory: "Movies & Events",
		CompanyName: "Big Tree Entertainment Pvt Ltd",
		Descriptors: []string{"bookmyshow", "book my show", "bigtree"},
	},
	{
		Brand:       "Airtel",
		Category:    "Utilities",
		Subcategory: "Telecom",
		CompanyName: "Bharti Airtel Ltd",
		Descriptors: []string{"airtel", "bharti airtel", "airtel payments"},
	},
	{
		Brand:       "Jio",
		Category:    "Utilities",
		Subcategory: "Telecom",
		CompanyName: "Reliance Jio Infocomm Ltd",
		Descriptors: []string{"jio", "reliance jio", "jio recharge"},
	},
	{
		Brand:       "Tata Power",
		Category:    "Utilities",
		Subcategory: "Electricity",
		CompanyName: "Tata Power Company Ltd",
		Descriptors: []string{"tata power", "tatapower"},
	},
	{
		Brand:       "Apollo Pharmacy",
		Category:    "Health",
		Subcategory: "Pharmacy",
		CompanyName: "Apollo Pharmacies Ltd",
		Descriptors: []string{"apollo pharmacy", "apollo pharmacies", "apollo*[location]"},
	},
	{
		Brand:       "PharmEasy",
		Category:    "Health",
		Subcategory: "Pharmacy",
		CompanyName: "Axelia Solutions Pvt Ltd",
		Descriptors: []string{"pharmeasy", "pharm easy"},
	},
	{
		Brand:       "Indian Oil",
		Category:    "Transport",
		Subcategory: "Fuel",
		CompanyName: "Indian Oil Corporation Ltd",
		Descriptors: []string{"indian oil", "iocl", "indianoil*[location]"},
	},
	{
		Brand:       "HP Petrol",
		Category:    "Transport",
		Subcategory: "Fuel",
		CompanyName: "Hindustan Petroleum Corporation Ltd",
		Descriptors: []string{"hpcl", "hp petrol", "hindustan petroleum"},
	},
	{
		Brand:       "Croma",
		Category:    "Shopping",
		Subcategory: "Electronics",
		CompanyName: "Infiniti Retail Ltd",
		Descriptors: []string{"croma", "croma*[location]", "infiniti retail"},
	},
	{
		Brand:       "Paytm",
		Category:    "Finance",
		Subcategory: "Wallet",
		CompanyName: "One97 Communications Ltd",
		Descriptors: []string{"paytm", "one97", "paytm wallet"},
	},
	{
		Brand:       "PhonePe",
		Category:    "Finance",
		Subcategory: "Wallet",
		CompanyName: "PhonePe Pvt Ltd",
		Descriptors: []string{"phonepe", "phone pe"},
	},
}
