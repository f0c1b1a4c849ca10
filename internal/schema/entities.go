package schema

import "github.com/mesh-intelligence/biblio/pkg/types"

// Loan status values.
const (
	LoanOngoing  = "en_cours"
	LoanReturned = "retourne"
	LoanOverdue  = "en_retard"
)

// Field names shared by the integrity rules.
const (
	FieldMemberRef    = "id_adherent"
	FieldItemRef      = "id_livre"
	FieldDateBorrowed = "date_emprunt"
	FieldDateReturned = "date_retour"
	FieldStatus       = "statut"
	FieldCopies       = "exemplaires"
)

var (
	fieldNom    = Field{Name: "nom", Label: "Nom", Kind: KindText, Required: true}
	fieldPrenom = Field{Name: "prenom", Label: "Prénom", Kind: KindText, Required: true}
	fieldEmail  = Field{Name: "email", Label: "Email", Kind: KindEmail}
)

// Standard returns the registry of the six library collections.
func Standard() *Registry {
	return NewRegistry(
		Entity{
			Name:  types.CollectionMembers,
			Title: "Adhérents",
			Fields: []Field{
				fieldNom,
				fieldPrenom,
				fieldEmail,
				{Name: "telephone", Label: "Téléphone", Kind: KindText},
			},
			Columns: []string{"nom", "prenom", "email", "telephone"},
			Display: DisplayPerson,
		},
		Entity{
			Name:  types.CollectionStaff,
			Title: "Bibliothécaires",
			Fields: []Field{
				fieldNom,
				fieldPrenom,
				{Name: "poste", Label: "Poste", Kind: KindText},
				fieldEmail,
			},
			Columns: []string{"nom", "prenom", "poste", "email"},
			Display: DisplayPerson,
		},
		Entity{
			Name:  types.CollectionCategories,
			Title: "Catégories",
			Fields: []Field{
				{Name: "nom", Label: "Nom", Kind: KindText, Required: true},
				{Name: "description", Label: "Description", Kind: KindTextarea},
			},
			Columns: []string{"nom", "description"},
			Display: displayField("nom"),
		},
		Entity{
			Name:  types.CollectionItems,
			Title: "Livres",
			Fields: []Field{
				{Name: "titre", Label: "Titre", Kind: KindText, Required: true},
				{Name: "auteur", Label: "Auteur", Kind: KindText},
				{Name: "annee", Label: "Année", Kind: KindNumber},
				{Name: "genre", Label: "Genre", Kind: KindText},
				{Name: FieldCopies, Label: "Exemplaires", Kind: KindNumber},
			},
			Columns: []string{"titre", "auteur", "annee", "genre", FieldCopies},
			Display: displayField("titre"),
		},
		Entity{
			Name:  types.CollectionUsers,
			Title: "Utilisateurs",
			Fields: []Field{
				fieldNom,
				fieldPrenom,
				{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
				{Name: "role", Label: "Rôle", Kind: KindSelect, Required: true, Options: []Option{
					{Value: "admin", Label: "Admin"},
					{Value: "staff", Label: "Staff"},
				}},
				{Name: "motDePasse", Label: "Mot de passe", Kind: KindPassword, Required: true},
			},
			Columns: []string{"nom", "prenom", "email", "role"},
			Display: DisplayPerson,
		},
		Entity{
			Name:  types.CollectionLoans,
			Title: "Emprunts",
			Fields: []Field{
				{Name: FieldMemberRef, Label: "Adhérent", Kind: KindSelect, Required: true, Ref: types.CollectionMembers},
				{Name: FieldItemRef, Label: "Livre", Kind: KindSelect, Required: true, Ref: types.CollectionItems},
				{Name: FieldDateBorrowed, Label: "Date d'emprunt", Kind: KindDate, Required: true},
				{Name: FieldDateReturned, Label: "Date de retour", Kind: KindDate},
				{Name: FieldStatus, Label: "Statut", Kind: KindSelect, Options: []Option{
					{Value: LoanOngoing, Label: "En cours"},
					{Value: LoanReturned, Label: "Retourné"},
					{Value: LoanOverdue, Label: "En retard"},
				}},
			},
			Columns: []string{FieldMemberRef, FieldItemRef, FieldDateBorrowed, FieldDateReturned, FieldStatus},
		},
	)
}
