package models

// DefaultAdminPIN is used when no ADMIN_PIN is configured and no admin
// setting exists yet.
const DefaultAdminPIN = "1832"

// SeedCanteens is the initial stall roster. Listing backfills any entry
// missing from the database, so adding a stall here is enough to ship it.
var SeedCanteens = []Canteen{
	{ID: "juice-canteen", Name: "Juice Canteen", Icon: "drink", Status: StatusClosed, PIN: "7297"},
	{ID: "vindhya-canteen", Name: "Vindhya Canteen", Icon: "coffee", Status: StatusClosed, PIN: "8139"},
	{ID: "basketball-canteen", Name: "Basketball Canteen", Icon: "noodles", Status: StatusClosed, PIN: "5303"},
	{ID: "vc-juice", Name: "VC (Juice)", Icon: "drink", Status: StatusClosed, PIN: "9635"},
	{ID: "tantra", Name: "Tantra", Icon: "rice", Status: StatusClosed, PIN: "8726"},
	{ID: "devids", Name: "Devid's", Icon: "cake", Status: StatusClosed, PIN: "8612"},
	{ID: "chaat-canteen", Name: "Chaat Canteen", Icon: "snack", Status: StatusClosed, PIN: "2924"},
	{ID: "waffle-stall", Name: "Waffle Stall", Icon: "waffle", Status: StatusClosed, PIN: "2091"},
	{ID: "dammams-milk-canteen", Name: "Dammam's Milk Canteen", Icon: "drink", Status: StatusClosed, PIN: "4455"},
	{ID: "vindhya-stationery", Name: "Vindhya Stationery Shop", Icon: "store", Status: StatusClosed, PIN: "3847"},
}
