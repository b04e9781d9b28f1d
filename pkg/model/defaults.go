package model

// Field ids shared by the built-in schemas.
const (
	FieldFullName        = "user_full_name"
	FieldEmail           = "user_email"
	FieldPassword        = "user_password"
	FieldPasswordConfirm = "user_password_confirm"
	FieldCity            = "user_city"
	FieldHobbies         = "user_hobbies"
	FieldMessage         = "user_message"
	FieldGender          = "user_gender"
	FieldPrivacy         = "user_privacy"
	FieldMessaging       = "user_messaging"
)

// DefaultRegistrationSchema returns the stock registration form.
func DefaultRegistrationSchema() Schema {
	return MustSchema(
		Field{
			ID:           FieldFullName,
			Kind:         KindText,
			Label:        "Full Name",
			Placeholder:  "Jane Doe",
			Required:     true,
			ErrorMessage: "Full Name is required",
		},
		Field{
			ID:          FieldEmail,
			Kind:        KindEmail,
			Label:       "Email",
			Placeholder: "you@example.com",
			Required:    true,
		},
		Field{
			ID:       FieldPassword,
			Kind:     KindPassword,
			Label:    "Password",
			Required: true,
		},
		Field{
			ID:             FieldPasswordConfirm,
			Kind:           KindPassword,
			Label:          "Confirm Password",
			Required:       true,
			ConfirmationOf: FieldPassword,
		},
		Field{
			ID:           FieldCity,
			Kind:         KindSelect,
			Label:        "City",
			Required:     true,
			ErrorMessage: "Please select your city",
			Options: []Option{
				{Value: "", Label: ""},
				{Value: "mykolayiv", Label: "Mykolayiv"},
				{Value: "kiev", Label: "Kiev"},
				{Value: "odessa", Label: "Odessa"},
				{Value: "vinitsya", Label: "Vinitsya"},
			},
		},
		Field{
			ID:       FieldHobbies,
			Kind:     KindSelect,
			Label:    "Hobbies",
			Multiple: true,
			Options: []Option{
				{Value: "", Label: ""},
				{Value: "tennis", Label: "Tennis"},
				{Value: "baseball", Label: "Baseball"},
				{Value: "basketball", Label: "Basketball"},
				{Value: "football", Label: "Football"},
			},
		},
		Field{
			ID:          FieldMessage,
			Kind:        KindTextarea,
			Label:       "Message",
			Placeholder: "Tell us about yourself",
			Required:    true,
		},
		Field{
			ID:           FieldGender,
			Kind:         KindRadio,
			Label:        "Gender",
			Required:     true,
			ErrorMessage: "Please select your gender",
			Options: []Option{
				{Value: "male", Label: "Male"},
				{Value: "female", Label: "Female"},
			},
		},
		Field{
			ID:           FieldPrivacy,
			Kind:         KindCheckbox,
			Label:        "Privacy Policy",
			Help:         `I have read and accept the <a href="/privacy-policy">Privacy Policy</a>.`,
			Required:     true,
			ErrorMessage: "Accepting Privacy Policy is required",
		},
		Field{
			ID:    FieldMessaging,
			Kind:  KindCheckbox,
			Label: "Receive advertising on email",
		},
	)
}

// LoginSchema returns the login form fields.
func LoginSchema() Schema {
	return MustSchema(
		Field{ID: FieldEmail, Kind: KindEmail, Label: "Email", Required: true},
		Field{ID: FieldPassword, Kind: KindPassword, Label: "Password", Required: true},
	)
}

// ForgotPasswordSchema returns the password reset request form fields.
func ForgotPasswordSchema() Schema {
	return MustSchema(
		Field{ID: FieldEmail, Kind: KindEmail, Label: "Email", Required: true},
	)
}

// ResetPasswordSchema returns the new password form fields. The reset key and
// login travel as hidden inputs outside the schema.
func ResetPasswordSchema() Schema {
	return MustSchema(
		Field{ID: FieldPassword, Kind: KindPassword, Label: "New Password", Required: true},
		Field{
			ID:             FieldPasswordConfirm,
			Kind:           KindPassword,
			Label:          "Confirm New Password",
			Required:       true,
			ConfirmationOf: FieldPassword,
		},
	)
}
