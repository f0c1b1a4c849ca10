package schema

// managedLabels names the keys the service adds to records on its own.
var managedLabels = map[string]string{
	"createdAt": "Créé le",
	"updatedAt": "Modifié le",
}

// Humanize returns the display label for a key that is not a schema field.
// Unknown keys are returned unchanged.
func Humanize(key string) string {
	if label, ok := managedLabels[key]; ok {
		return label
	}
	return key
}
