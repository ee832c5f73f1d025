package views

// Card is a dashboard shortcut to a task view.
type Card struct {
	Target      ViewID
	Title       string
	Description string
}

// Update is a labor-law news item shown on the dashboard.
type Update struct {
	Title  string
	Date   string
	Tag    string
	URL    string
	Status string
}

// Critical reports whether the update should be highlighted.
func (u Update) Critical() bool {
	return u.Status == "Critical"
}

var (
	dashboardCards = []Card{
		{Target: ViewSearch, Title: "Rights Explorer", Description: "Verify legal minimums for pay, leave, and fair termination."},
		{Target: ViewTranslate, Title: "Law Translator", Description: "Convert technical legal documents into Kiswahili or Sheng."},
		{Target: ViewMedia, Title: "Media Analyzer", Description: "Scan contracts for potential legal risks and red flags."},
	}

	counselorCard = Card{
		Target:      ViewChat,
		Title:       "Speak with KaziTrust",
		Description: "Discuss workplace disputes, contract questions, or rights violations in confidence. KaziTrust is trained on the latest Employment Act.",
	}

	legalUpdates = []Update{
		{Title: "Minimum Wage Adjustment 2024", Date: "Jan 12, 2024", Tag: "Wage", URL: "https://www.labour.go.ke/", Status: "Critical"},
		{Title: "NHIF to SHIF Transition Guide", Date: "Feb 05, 2024", Tag: "Health", URL: "https://sha.go.ke/", Status: "New"},
		{Title: "Domestic Worker Protection Bill", Date: "Mar 10, 2024", Tag: "Policy", URL: "http://kenyalaw.org/", Status: "Update"},
	}
)

// DashboardView is the landing view. It has no gateway interaction.
type DashboardView struct {
	base
}

func newDashboardView(deps Deps) *DashboardView {
	return &DashboardView{base: newBase(ViewDashboard, deps)}
}

// Cards returns the tool shortcuts.
func (v *DashboardView) Cards() []Card {
	return append([]Card(nil), dashboardCards...)
}

// Counselor returns the call-to-action card for the chat view.
func (v *DashboardView) Counselor() Card {
	return counselorCard
}

// Updates returns the legal news items.
func (v *DashboardView) Updates() []Update {
	return append([]Update(nil), legalUpdates...)
}
