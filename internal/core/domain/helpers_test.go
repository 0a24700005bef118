package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setFields(t *testing.T, o Owner, fields map[OwnerField]string) Owner {
	t.Helper()
	// constitution_type первым: он очищает поля другого способа учреждения.
	if ct, ok := fields[OwnerFieldConstitutionType]; ok {
		var err error
		o, err = SetOwnerField(o, OwnerFieldConstitutionType, ct)
		require.NoError(t, err)
	}
	for f, v := range fields {
		if f == OwnerFieldConstitutionType {
			continue
		}
		var err error
		o, err = SetOwnerField(o, f, v)
		require.NoError(t, err, "field %s", f)
	}
	return o
}

func withAddress(fields map[OwnerField]string) map[OwnerField]string {
	fields[OwnerFieldAddressStreet] = "Av. Providencia"
	fields[OwnerFieldAddressNumber] = "1234"
	fields[OwnerFieldAddressRegion] = "Metropolitana"
	fields[OwnerFieldAddressCommune] = "Providencia"
	fields[OwnerFieldAddressUnitType] = "casa"
	return fields
}

func uploadAll(o Owner) Owner {
	docs := make([]DocumentSlot, len(o.Documents))
	copy(docs, o.Documents)
	for i := range docs {
		docs[i].URL = "https://files.example.cl/" + string(docs[i].Type) + ".pdf"
	}
	o.Documents = docs
	return o
}

func validNaturalOwner(t *testing.T, rut, email string) Owner {
	t.Helper()
	o, err := NewOwner(OwnerTypeNatural)
	require.NoError(t, err)
	o = setFields(t, o, withAddress(map[OwnerField]string{
		OwnerFieldFirstName:        "Ana",
		OwnerFieldPaternalLastName: "Rojas",
		OwnerFieldNationalID:       rut,
		OwnerFieldNationality:      "Chilena",
		OwnerFieldEmail:            email,
	}))
	return uploadAll(o)
}

func validLegalOwner(t *testing.T, taxID, email string) Owner {
	t.Helper()
	o, err := NewOwner(OwnerTypeLegal)
	require.NoError(t, err)
	o = setFields(t, o, withAddress(map[OwnerField]string{
		OwnerFieldCompanyName:         "Inversiones Andes SpA",
		OwnerFieldCompanyTaxID:        taxID,
		OwnerFieldCompanyEmail:        email,
		OwnerFieldConstitutionType:    string(ConstitutionSameDay),
		OwnerFieldConstitutionDate:    "2020-05-10",
		OwnerFieldVerificationCode:    "ABC123",
		OwnerFieldRepFirstName:        "Pedro",
		OwnerFieldRepPaternalLastName: "Soto",
		OwnerFieldRepNationalID:       "9.876.543-2",
		OwnerFieldRepEmail:            "pedro@andes.cl",
		OwnerFieldRepPhone:            "+56911112222",
	}))
	return uploadAll(o)
}

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
