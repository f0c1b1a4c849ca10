package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

func TestStandardRegistry(t *testing.T) {
	reg := Standard()

	assert.Equal(t, types.StandardCollections, reg.Names())

	for _, name := range reg.Names() {
		e, err := reg.Entity(name)
		require.NoError(t, err)
		for _, col := range e.Columns {
			_, ok := e.Field(col)
			assert.True(t, ok, "%s column %s has no field", name, col)
		}
	}

	_, err := reg.Entity("magazines")
	assert.ErrorIs(t, err, types.ErrUnknownEntity)
	_, err = reg.Fields("magazines")
	assert.ErrorIs(t, err, types.ErrUnknownEntity)
	_, err = reg.Columns("magazines")
	assert.ErrorIs(t, err, types.ErrUnknownEntity)

	f, err := reg.Field(types.CollectionLoans, FieldMemberRef)
	require.NoError(t, err)
	assert.Equal(t, types.CollectionMembers, f.Ref)
	assert.Equal(t, "select", f.Kind.InputType())

	_, err = reg.Field(types.CollectionLoans, "nope")
	assert.Error(t, err)
}

func TestNamesReturnsCopy(t *testing.T) {
	reg := Standard()
	names := reg.Names()
	names[0] = "changed"
	assert.Equal(t, types.CollectionMembers, reg.Names()[0])
}

func TestValidate(t *testing.T) {
	reg := Standard()

	tests := []struct {
		name      string
		entity    string
		rec       types.Record
		wantErr   error
		wantField string
		check     func(t *testing.T, out types.Record)
	}{
		{
			name:   "valid member",
			entity: types.CollectionMembers,
			rec:    types.Record{"nom": "Doe", "prenom": "Jane", "email": "jane@example.org"},
		},
		{
			name:      "missing first required field",
			entity:    types.CollectionMembers,
			rec:       types.Record{"prenom": "Jane"},
			wantErr:   types.ErrMissingRequiredField,
			wantField: "nom",
		},
		{
			name:      "whitespace counts as missing",
			entity:    types.CollectionMembers,
			rec:       types.Record{"nom": "Doe", "prenom": "   "},
			wantErr:   types.ErrMissingRequiredField,
			wantField: "prenom",
		},
		{
			name:      "required checked before kinds",
			entity:    types.CollectionUsers,
			rec:       types.Record{"nom": "A", "prenom": "B", "email": "not-an-email", "role": "admin"},
			wantErr:   types.ErrMissingRequiredField,
			wantField: "motDePasse",
		},
		{
			name:      "bad email",
			entity:    types.CollectionMembers,
			rec:       types.Record{"nom": "Doe", "prenom": "Jane", "email": "jane"},
			wantErr:   types.ErrInvalidFieldValue,
			wantField: "email",
		},
		{
			name:   "blank optional email is not checked",
			entity: types.CollectionMembers,
			rec:    types.Record{"nom": "Doe", "prenom": "Jane", "email": ""},
		},
		{
			name:   "numeric string normalized",
			entity: types.CollectionItems,
			rec:    types.Record{"titre": "Dune", "annee": "1965"},
			check: func(t *testing.T, out types.Record) {
				assert.Equal(t, float64(1965), out["annee"])
			},
		},
		{
			name:      "fractional number rejected",
			entity:    types.CollectionItems,
			rec:       types.Record{"titre": "Dune", "exemplaires": 1.5},
			wantErr:   types.ErrInvalidFieldValue,
			wantField: "exemplaires",
		},
		{
			name:      "non numeric rejected",
			entity:    types.CollectionItems,
			rec:       types.Record{"titre": "Dune", "annee": "soon"},
			wantErr:   types.ErrInvalidFieldValue,
			wantField: "annee",
		},
		{
			name:      "role outside options",
			entity:    types.CollectionUsers,
			rec:       types.Record{"nom": "A", "prenom": "B", "email": "a@b.org", "role": "root", "motDePasse": "x"},
			wantErr:   types.ErrInvalidFieldValue,
			wantField: "role",
		},
		{
			name:      "bad date",
			entity:    types.CollectionLoans,
			rec:       types.Record{"id_adherent": "m", "id_livre": "i", "date_emprunt": "05/01/2024"},
			wantErr:   types.ErrInvalidFieldValue,
			wantField: "date_emprunt",
		},
		{
			name:   "blank status becomes null",
			entity: types.CollectionLoans,
			rec:    types.Record{"id_adherent": "m", "id_livre": "i", "date_emprunt": "2024-05-01", "statut": ""},
			check: func(t *testing.T, out types.Record) {
				v, ok := out["statut"]
				assert.True(t, ok)
				assert.Nil(t, v)
			},
		},
		{
			name:   "unknown keys pass through",
			entity: types.CollectionCategories,
			rec:    types.Record{"nom": "SF", "extra": "kept"},
			check: func(t *testing.T, out types.Record) {
				assert.Equal(t, "kept", out["extra"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := reg.Entity(tt.entity)
			require.NoError(t, err)

			out, err := e.Validate(tt.rec)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var ve *types.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				assert.Nil(t, out)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	e, err := Standard().Entity(types.CollectionItems)
	require.NoError(t, err)

	in := types.Record{"titre": "Dune", "annee": "1965"}
	_, err = e.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "1965", in["annee"])
}

func TestDisplayPerson(t *testing.T) {
	assert.Equal(t, "Doe Jane", DisplayPerson(types.Record{"nom": "Doe", "prenom": "Jane"}))
	assert.Equal(t, "Doe", DisplayPerson(types.Record{"nom": "Doe"}))
	assert.Equal(t, "j@x.org", DisplayPerson(types.Record{"email": "j@x.org"}))
	assert.Equal(t, "N/A", DisplayPerson(types.Record{}))
}

func TestRefOptions(t *testing.T) {
	reg := Standard()
	members := []types.Record{
		{"_id": "m1", "nom": "Doe", "prenom": "Jane"},
		{"_id": "m2", "email": "x@y.org"},
	}

	f, err := reg.Field(types.CollectionLoans, FieldMemberRef)
	require.NoError(t, err)
	opts, err := reg.RefOptions(f, members)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "m1", Label: "Doe Jane"}, {Value: "m2", Label: "x@y.org"}}, opts)

	status, err := reg.Field(types.CollectionLoans, FieldStatus)
	require.NoError(t, err)
	opts, err = reg.RefOptions(status, members)
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestKindText(t *testing.T) {
	for k, name := range kindNames {
		text, err := k.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	_, err := ParseKind("color")
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"createdAt", "Créé le"},
		{"updatedAt", "Modifié le"},
		{"date_emprunt", "date_emprunt"},
		{"whatever", "whatever"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Humanize(tt.key), tt.key)
	}
}
