package view

// Layout is one of the two exclusive layouts of the page.
type Layout int

const (
	LayoutSignIn Layout = iota
	LayoutGreeting
)

func (l Layout) String() string {
	if l == LayoutGreeting {
		return "greeting"
	}

	return "signin"
}

// MarshalText encodes the layout by name in JSON replies.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Model is a snapshot of the view taken for one render.
type Model struct {
	Layout              Layout `json:"layout"`
	AccountID           string `json:"accountId,omitempty"`
	ContractID          string `json:"contractId,omitempty"`
	Name                string `json:"name"`
	Loading             bool   `json:"loading"`
	ReadError           string `json:"readError,omitempty"`
	SubmitEnabled       bool   `json:"submitEnabled"`
	InputDisabled       bool   `json:"inputDisabled"`
	NotificationVisible bool   `json:"notificationVisible"`
	Image               string `json:"image,omitempty"`
	Alert               string `json:"alert,omitempty"`
}

// SignedIn tells whether the model renders the greeting layout.
func (m Model) SignedIn() bool {
	return m.Layout == LayoutGreeting
}

// Greeting returns the heading text: "Hello <name>!" when a name is known, the fallback label otherwise.
func (m Model) Greeting() string {
	if m.Name == "" {
		return FallbackLabel
	}

	return "Hello " + m.Name + "!"
}

// Render takes a snapshot of the view. The layout is decided by asking the session, every time.
func (v *View) Render() Model {
	if !v.session.IsSignedIn() {
		return Model{Layout: LayoutSignIn}
	}

	m := Model{
		Layout:     LayoutGreeting,
		AccountID:  v.session.AccountID(),
		ContractID: v.contract.ContractID(),
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	m.Name = v.name
	m.Loading = v.loading
	m.SubmitEnabled = v.submitEnabled
	m.InputDisabled = v.inputDisabled
	m.NotificationVisible = v.notification
	m.Image = v.image
	m.Alert = v.alert

	if v.readErr != nil {
		m.ReadError = v.readErr.Error()
	}

	return m
}
