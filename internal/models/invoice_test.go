package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung-backend/internal/apperr"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	t.Parallel()

	all := []InvoiceStatus{StatusDraft, StatusOpen, StatusPaid, StatusCancelled}
	allowed := map[[2]InvoiceStatus]bool{
		{StatusDraft, StatusOpen}:      true,
		{StatusDraft, StatusCancelled}: true,
		{StatusOpen, StatusPaid}:       true,
		{StatusOpen, StatusCancelled}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]InvoiceStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestInvoiceStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusOpen.Terminal())
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestInvoiceStatusValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusDraft.Valid())
	assert.False(t, InvoiceStatus("archived").Valid())
	assert.False(t, InvoiceStatus("").Valid())
}

func validInvoiceInput() InvoiceInput {
	rate := 19.0
	return InvoiceInput{
		CustomerID:  "7d444840-9dc0-11d1-b245-5ffdce74fad2",
		InvoiceDate: "2024-03-15",
		Items: []InvoiceItemInput{
			{Description: "Beratung", Quantity: 2, UnitPrice: 100, VatRate: &rate},
		},
	}
}

func TestInvoiceInputValidate_Defaults(t *testing.T) {
	t.Parallel()

	in := validInvoiceInput()
	in.Items[0].VatRate = nil
	in.Items[0].Unit = ""

	require.NoError(t, in.Validate())
	assert.Equal(t, StatusDraft, in.Status)
	assert.Equal(t, "Stk.", in.Items[0].Unit)
	require.NotNil(t, in.Items[0].VatRate)
	assert.Equal(t, 19.0, *in.Items[0].VatRate)
}

func TestInvoiceInputValidate_FirstViolationWins(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*InvoiceInput)
		want   string
	}{
		{"bad customer id", func(in *InvoiceInput) { in.CustomerID = "not-a-uuid" }, "Kunde ist erforderlich"},
		{"bad date", func(in *InvoiceInput) { in.InvoiceDate = "15.03.2024" }, "Ungültiges Datum"},
		{"bad due date", func(in *InvoiceInput) { in.DueDate = "soon" }, "Ungültiges Datum"},
		{"bad status", func(in *InvoiceInput) { in.Status = "archived" }, "Ungültiger Status"},
		{"notes too long", func(in *InvoiceInput) { in.Notes = strings.Repeat("x", 2001) }, "Hinweise sind zu lang"},
		{"no items", func(in *InvoiceInput) { in.Items = nil }, "Mindestens eine Position ist erforderlich"},
		{"blank description", func(in *InvoiceInput) { in.Items[0].Description = "" }, "Beschreibung ist erforderlich"},
		{"zero quantity", func(in *InvoiceInput) { in.Items[0].Quantity = 0 }, "Menge muss größer als 0 sein"},
		{"negative price", func(in *InvoiceInput) { in.Items[0].UnitPrice = -1 }, "Preis darf nicht negativ sein"},
		{"vat too high", func(in *InvoiceInput) { v := 101.0; in.Items[0].VatRate = &v }, "MwSt.-Satz darf maximal 100% sein"},
		// customer id is checked before the date, field order decides
		{"two violations", func(in *InvoiceInput) { in.CustomerID = ""; in.InvoiceDate = "" }, "Kunde ist erforderlich"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validInvoiceInput()
			c.mutate(&in)

			err := in.Validate()
			require.Error(t, err)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.want, ve.Message)
		})
	}
}

func TestInvoiceInputFilterBlankItems(t *testing.T) {
	t.Parallel()

	in := validInvoiceInput()
	in.Items = append(in.Items,
		InvoiceItemInput{Description: "   "},
		InvoiceItemInput{Description: "Fahrtkosten", Quantity: 1, UnitPrice: 30},
		InvoiceItemInput{},
	)

	in.FilterBlankItems()

	require.Len(t, in.Items, 2)
	assert.Equal(t, "Beratung", in.Items[0].Description)
	assert.Equal(t, "Fahrtkosten", in.Items[1].Description)
}

func TestCustomerInputValidate(t *testing.T) {
	t.Parallel()

	in := CustomerInput{Name: "ACME GmbH"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Deutschland", in.Country)

	in = CustomerInput{}
	err := in.Validate()
	require.EqualError(t, err, "Kundenname ist erforderlich")

	in = CustomerInput{Name: "ACME GmbH", Email: "nicht-gültig"}
	require.EqualError(t, in.Validate(), "Ungültige E-Mail-Adresse")

	// empty email is allowed
	in = CustomerInput{Name: "ACME GmbH", Email: ""}
	require.NoError(t, in.Validate())
}

func TestSettingsInputValidate(t *testing.T) {
	t.Parallel()

	in := SettingsInput{CompanyName: "Muster Consulting"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Deutschland", in.Country)
	assert.Equal(t, "INV-", in.InvoicePrefix)
	require.NotNil(t, in.DefaultVatRate)
	assert.Equal(t, 19.0, *in.DefaultVatRate)

	in = SettingsInput{}
	require.EqualError(t, in.Validate(), "Firmenname ist erforderlich")

	in = SettingsInput{CompanyName: "M", IBAN: "DE1234"}
	require.EqualError(t, in.Validate(), "Ungültige IBAN")

	in = SettingsInput{CompanyName: "M", IBAN: "DE89370400440532013000"}
	require.NoError(t, in.Validate())

	in = SettingsInput{CompanyName: "M", BIC: "12345678"}
	require.EqualError(t, in.Validate(), "Ungültige BIC")

	in = SettingsInput{CompanyName: "M", BIC: "COBADEFF"}
	require.NoError(t, in.Validate())

	in = SettingsInput{CompanyName: "M", BIC: "COBADEFFXXX"}
	require.NoError(t, in.Validate())

	rate := 120.0
	in = SettingsInput{CompanyName: "M", DefaultVatRate: &rate}
	require.EqualError(t, in.Validate(), "MwSt.-Satz darf maximal 100% sein")
}
