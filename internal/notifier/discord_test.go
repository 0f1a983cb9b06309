package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/models"
)

func TestRegistrationMessage(t *testing.T) {
	participant := models.Participant{FirstName: "Anna", LastName: "Schmidt", Email: "anna@example.org"}
	registration := models.Registration{
		RegistrationFields: models.RegistrationFields{
			Comment:                "Arriving late",
			HasDietaryRestrictions: true,
			DietaryDetails:         "nuts",
			NeedsTransport:         true,
		},
		Adults:   []models.Adult{{Attendance: models.Attendance{Name: "Anna", Age: 34}}},
		Children: []models.Child{{Attendance: models.Attendance{Name: "Ben", Age: 6}}},
	}

	msg := RegistrationMessage(participant, registration)

	for _, want := range []string{
		"Anna Schmidt (anna@example.org)",
		"**Adults:** 1",
		"**Children:** 1",
		"Anna (34), Ben (6, child)",
		"**Transport:** needed",
		"**Dietary:** nuts",
		"**Comment:** Arriving late",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestDiscordNotifier_Unconfigured(t *testing.T) {
	n := &DiscordNotifier{}
	assert.Error(t, n.NotifyRegistration(models.Participant{}, models.Registration{}))

	_, err := NewDiscordNotifier(&config.Config{DiscordBotToken: "token"})
	assert.Error(t, err, "a missing channel must disable the notifier")
}
