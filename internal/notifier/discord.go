package notifier

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/models"
)

type Notifier interface {
	NotifyRegistration(participant models.Participant, registration models.Registration) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier opens a bot session. It fails when the bot token or the
// channel is not configured.
func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" || cfg.DiscordNotificationsChannelID == "" {
		return nil, fmt.Errorf("discord bot token or notifications channel not configured")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		session:   session,
		channelID: cfg.DiscordNotificationsChannelID,
	}, nil
}

func (n *DiscordNotifier) NotifyRegistration(participant models.Participant, registration models.Registration) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := RegistrationMessage(participant, registration)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

// RegistrationMessage renders the channel message for a finalized registration.
func RegistrationMessage(participant models.Participant, registration models.Registration) string {
	var people []string
	for _, a := range registration.Adults {
		people = append(people, fmt.Sprintf("%s (%d)", a.Name, a.Age))
	}
	for _, c := range registration.Children {
		people = append(people, fmt.Sprintf("%s (%d, child)", c.Name, c.Age))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 **New Registration**\n**Participant:** %s (%s)\n**Adults:** %d\n**Children:** %d",
		participant.FullName(),
		participant.Email,
		len(registration.Adults),
		len(registration.Children),
	)
	if len(people) > 0 {
		fmt.Fprintf(&b, "\n**People:** %s", strings.Join(people, ", "))
	}
	if registration.NeedsTransport {
		b.WriteString("\n**Transport:** needed")
	}
	if registration.HasDietaryRestrictions {
		fmt.Fprintf(&b, "\n**Dietary:** %s", registration.DietaryDetails)
	}
	if registration.Comment != "" {
		fmt.Fprintf(&b, "\n**Comment:** %s", registration.Comment)
	}
	return b.String()
}
