package schema

// JobFields is the importable field catalog for jobs.
// clientName is virtual: the transformer resolves it to a client id within
// the tenant instead of storing the raw name.
var JobFields = []FieldDefinition{
	{Key: "title", Label: "Job Title", Type: FieldText, Required: true},
	{Key: "clientName", Label: "Client Name", Type: FieldText, Required: true, Virtual: true},
	{Key: "description", Label: "Description", Type: FieldText},
	{Key: "location", Label: "Location", Type: FieldText},
	{Key: "employmentType", Label: "Employment Type", Type: FieldEnum,
		EnumValues: []string{"FULL_TIME", "PART_TIME", "CONTRACT", "TEMPORARY"}},
	{Key: "salaryMin", Label: "Salary Min", Type: FieldNumber},
	{Key: "salaryMax", Label: "Salary Max", Type: FieldNumber},
	{Key: "openings", Label: "Openings", Type: FieldNumber},
	{Key: "startDate", Label: "Start Date", Type: FieldDate},
	{Key: "skills", Label: "Required Skills", Type: FieldArray},
	{Key: "status", Label: "Status", Type: FieldEnum,
		EnumValues: []string{"OPEN", "ON_HOLD", "FILLED", "CLOSED"}},
}
