package types

// Standard collection names. They double as the keys of the persisted
// snapshot and as the resource names of the remote API.
const (
	CollectionMembers    = "adherents"
	CollectionStaff      = "bibliothecaires"
	CollectionCategories = "categories"
	CollectionItems      = "livres"
	CollectionUsers      = "users"
	CollectionLoans      = "emprunts"
)

// StandardCollections lists all collection names in snapshot order.
var StandardCollections = []string{
	CollectionMembers,
	CollectionStaff,
	CollectionCategories,
	CollectionItems,
	CollectionUsers,
	CollectionLoans,
}

// IsCollection reports whether name is one of the standard collections.
func IsCollection(name string) bool {
	for _, c := range StandardCollections {
		if c == name {
			return true
		}
	}
	return false
}
