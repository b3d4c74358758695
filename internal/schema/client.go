package schema

// ClientFields is the importable field catalog for client companies.
var ClientFields = []FieldDefinition{
	{Key: "name", Label: "Company Name", Type: FieldText, Required: true},
	{Key: "industry", Label: "Industry", Type: FieldText},
	{Key: "website", Label: "Website", Type: FieldText},
	{Key: "email", Label: "Email", Type: FieldText},
	{Key: "phone", Label: "Phone", Type: FieldText},
	{Key: "address", Label: "Address", Type: FieldText},
	{Key: "city", Label: "City", Type: FieldText},
	{Key: "country", Label: "Country", Type: FieldText},
	{Key: "contactName", Label: "Contact Name", Type: FieldText, Virtual: true},
	{Key: "contactFirstName", Label: "Contact First Name", Type: FieldText},
	{Key: "contactLastName", Label: "Contact Last Name", Type: FieldText},
	{Key: "status", Label: "Status", Type: FieldEnum,
		EnumValues: []string{"ACTIVE", "PROSPECT", "INACTIVE"}},
}
