package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type apiCall struct {
	to   tele.Recipient
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	calls []apiCall
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, apiCall{to: to, what: what, opts: opts})
	return &tele.Message{}, nil
}

func TestTelegramMessengerText(t *testing.T) {
	api := &fakeAPI{}
	m := NewTelegramMessenger(api, nil, groupID)
	ctx := context.Background()

	require.NoError(t, m.SendText(ctx, userID, Message{Text: "hola", Keyboard: [][]string{{"Send"}}}))
	require.NoError(t, m.SendText(ctx, groupID, Message{Text: "*report*", Mode: ModeMarkdown}))
	require.NoError(t, m.SendText(ctx, userID, Message{Text: "link", Mode: ModeMarkdownNoPreview}))
	require.Len(t, api.calls, 3)

	first := api.calls[0]
	assert.Equal(t, "99887766", first.to.Recipient())
	assert.Equal(t, "hola", first.what)
	opts := first.opts[0].(*tele.SendOptions)
	assert.Equal(t, tele.ParseMode(""), opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	assert.Equal(t, "Send", opts.ReplyMarkup.ReplyKeyboard[0][0].Text)

	group := api.calls[1].opts[0].(*tele.SendOptions)
	assert.Equal(t, tele.ModeMarkdown, group.ParseMode)
	assert.Nil(t, group.ReplyMarkup, "group messages carry no keyboard")

	noPreview := api.calls[2].opts[0].(*tele.SendOptions)
	assert.True(t, noPreview.DisableWebPagePreview)
	assert.True(t, noPreview.ReplyMarkup.RemoveKeyboard)
}

func TestTelegramMessengerPhoto(t *testing.T) {
	api := &fakeAPI{}
	m := NewTelegramMessenger(api, nil, groupID)
	require.NoError(t, m.SendPhoto(context.Background(), groupID, "AgACAgEAAxk"))
	require.Len(t, api.calls, 1)
	photo, ok := api.calls[0].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "AgACAgEAAxk", photo.FileID)
	assert.Equal(t, "-100123", api.calls[0].to.Recipient())
}

func TestEventFromContext(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Token: "test", Offline: true})
	require.NoError(t, err)

	user := &tele.User{ID: userID, Username: "juan", FirstName: "Juan"}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}

	c := b.NewContext(tele.Update{ID: 7, Message: &tele.Message{Sender: user, Chat: chat, Text: "/Report@HuellitasBot"}})
	ev := EventFromContext(c, "")
	assert.Equal(t, Event{
		UpdateID:  7,
		UserID:    userID,
		ChatID:    userID,
		Username:  "juan",
		FirstName: "Juan",
		Command:   CmdReport,
		Text:      "/Report@HuellitasBot",
	}, ev)

	c = b.NewContext(tele.Update{ID: 8, Message: &tele.Message{
		Sender: user,
		Chat:   chat,
		Photo:  &tele.Photo{File: tele.File{FileID: "AgAC"}},
	}})
	ev = EventFromContext(c, "")
	assert.Equal(t, "AgAC", ev.PhotoRef)
	assert.Empty(t, ev.Text)
	assert.Empty(t, ev.Command)

	c = b.NewContext(tele.Update{ID: 9, Message: &tele.Message{Sender: user, Chat: chat, Text: "/reportar"}})
	assert.Equal(t, CmdReport, EventFromContext(c, CmdReport).Command)
}
