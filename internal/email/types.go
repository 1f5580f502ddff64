package email

type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type TemplateData map[string]interface{}
