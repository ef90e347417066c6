package sheetsync

import "fmt"

// defaultCollaboratorGroups is how many repeated "Collaborator N" field
// groups the default mapping carries.
const defaultCollaboratorGroups = 50

// DefaultFieldMapping returns the stock field mapping: the built-in identity
// fields, the common company-profile fields, and numbered collaborator
// sub-record groups.
func DefaultFieldMapping(collaborators int) FieldMapping {
	var mapping = FieldMapping{
		{Key: FieldLogin, Label: DefaultLoginLabel},
		{Key: FieldEmail, Label: DefaultEmailLabel},
		{Key: "country", Label: "Country"},
		{Key: "film_tv", Label: "Cinema or Television"},
		{Key: "role_company", Label: "Role Company"},
		{Key: "type_production", Label: "Type"},
		{Key: "company", Label: "Company"},
		{Key: FieldRole, Label: DefaultRoleLabel},
		{Key: "email_company", Label: "Email Company"},
		{Key: "street", Label: "Street"},
		{Key: "postal_code", Label: "Postal Code"},
		{Key: "city", Label: "City"},
		{Key: "phone", Label: "Phone"},
		{Key: FieldFirstName, Label: DefaultFirstNameLabel},
		{Key: FieldLastName, Label: DefaultLastNameLabel},
		{Key: "position", Label: "Position"},
		{Key: "website_company", Label: "Website"},
		{Key: "linkedin", Label: "LinkedIn"},
		{Key: "reference", Label: "Reference"},
	}
	for i := 1; i <= collaborators; i++ {
		mapping = append(mapping,
			FieldEntry{Key: fmt.Sprintf("collaborator%d_first_name", i), Label: fmt.Sprintf("Collaborator%d First Name", i)},
			FieldEntry{Key: fmt.Sprintf("collaborator%d_last_name", i), Label: fmt.Sprintf("Collaborator%d Last Name", i)},
			FieldEntry{Key: fmt.Sprintf("collaborator%d_email", i), Label: fmt.Sprintf("Collaborator%d Email", i)},
			FieldEntry{Key: fmt.Sprintf("collaborator%d_phone", i), Label: fmt.Sprintf("Collaborator%d Phone", i)},
			FieldEntry{Key: fmt.Sprintf("collaborator%d_position", i), Label: fmt.Sprintf("Collaborator%d Position", i)},
			FieldEntry{Key: fmt.Sprintf("collaborator%d_linkedin", i), Label: fmt.Sprintf("Collaborator%d LinkedIn", i)},
		)
	}
	return mapping
}
