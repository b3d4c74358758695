package schema

// CandidateFields is the importable field catalog for candidates.
// fullName is virtual: the transformer splits it into firstName/lastName
// when neither was mapped explicitly.
var CandidateFields = []FieldDefinition{
	{Key: "fullName", Label: "Full Name", Type: FieldText, Virtual: true},
	{Key: "firstName", Label: "First Name", Type: FieldText, Required: true},
	{Key: "lastName", Label: "Last Name", Type: FieldText, Required: true},
	{Key: "email", Label: "Email", Type: FieldText},
	{Key: "phone", Label: "Phone", Type: FieldText},
	{Key: "currentTitle", Label: "Current Title", Type: FieldText},
	{Key: "currentCompany", Label: "Current Company", Type: FieldText},
	{Key: "location", Label: "Location", Type: FieldText},
	{Key: "skills", Label: "Skills", Type: FieldArray},
	{Key: "yearsExperience", Label: "Years of Experience", Type: FieldNumber},
	{Key: "expectedSalary", Label: "Expected Salary", Type: FieldNumber},
	{Key: "availableFrom", Label: "Available From", Type: FieldDate},
	{Key: "source", Label: "Source", Type: FieldEnum,
		EnumValues: []string{"JOBBOARD", "LINKEDIN", "REFERRAL", "DIRECT", "AGENCY", "OTHER"}},
	{Key: "status", Label: "Status", Type: FieldEnum,
		EnumValues: []string{"ACTIVE", "PASSIVE", "PLACED", "DND"}},
	{Key: "notes", Label: "Notes", Type: FieldText},
}
