package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huellitas-unexpo/rescuebot/core/logger"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/state"
	"github.com/huellitas-unexpo/rescuebot/internal/archive"
	"github.com/huellitas-unexpo/rescuebot/internal/report"
)

// Archive stores delivered reports.
type Archive interface {
	Save(ctx context.Context, e archive.Entry) (string, error)
}

// Recorder receives report outcomes for metrics.
type Recorder interface {
	ReportSubmitted(anonymous bool)
	DeliveryFailed()
}

// Options wires a Dispatcher. Archive and Recorder are optional.
type Options struct {
	Store       state.Store[report.Session]
	Machine     *report.Machine
	Messenger   Messenger
	GroupChatID int64
	Archive     Archive
	Recorder    Recorder
	Locks       *state.Locks
	Now         func() time.Time
}

// Dispatcher routes events to the static commands or to the report form.
type Dispatcher struct {
	store     state.Store[report.Session]
	machine   *report.Machine
	messenger Messenger
	group     int64
	archive   Archive
	recorder  Recorder
	locks     *state.Locks
	now       func() time.Time
}

// NewDispatcher validates opts and fills the optional collaborators.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Messenger == nil {
		return nil, errors.New("bot: messenger is required")
	}
	if opts.GroupChatID == 0 {
		return nil, errors.New("bot: group chat id is required")
	}
	if opts.Store == nil {
		opts.Store = state.NewMemoryStore[report.Session]()
	}
	if opts.Machine == nil {
		opts.Machine = report.NewMachine()
	}
	if opts.Locks == nil {
		opts.Locks = state.NewLocks()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		store:     opts.Store,
		machine:   opts.Machine,
		messenger: opts.Messenger,
		group:     opts.GroupChatID,
		archive:   opts.Archive,
		recorder:  opts.Recorder,
		locks:     opts.Locks,
		now:       opts.Now,
	}, nil
}

// ActiveSessions returns how many forms are in progress.
func (d *Dispatcher) ActiveSessions() int {
	return d.store.Len()
}

// Handle processes one event and sends exactly one reply to its chat.
// Events of the same conversation are handled one at a time.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	key := state.Key{UserID: ev.UserID, ChatID: ev.ChatID}
	unlock := d.locks.Lock(key)
	defer unlock()

	sess, _ := d.store.Get(key)

	switch ev.Command {
	case CmdStart:
		return d.reply(ctx, ev, Message{Text: welcomeText})
	case CmdDonation:
		return d.reply(ctx, ev, Message{Text: donationText})
	case CmdAdopt:
		return d.reply(ctx, ev, Message{Text: adoptionText, Mode: ModeMarkdownNoPreview})
	case CmdReport:
		res, err := d.machine.Begin(sess)
		if err != nil {
			return d.fail(ctx, key, ev, err)
		}
		if !sess.Active() {
			logger.Info(ctx, "report", "report.started")
		}
		d.store.Put(key, res.Session)
		return d.replyWith(ctx, ev, res.Reply)
	case CmdCancel:
		if !sess.Active() {
			return d.reply(ctx, ev, Message{Text: nothingToCancelText})
		}
		res := d.machine.Cancel(sess)
		d.store.Clear(key)
		logger.Info(ctx, "report", "report.cancelled", slog.String("state", string(sess.State)))
		return d.replyWith(ctx, ev, res.Reply)
	case "":
	default:
		if sess.Active() {
			reply := report.Prompt(sess.State)
			reply.Text = strayCommandText + "\n\n" + reply.Text
			return d.replyWith(ctx, ev, reply)
		}
		return d.reply(ctx, ev, Message{Text: welcomeText})
	}

	if !sess.Active() {
		return d.reply(ctx, ev, Message{Text: welcomeText})
	}

	res, err := d.machine.Step(sess, report.Input{Text: ev.Text, PhotoRef: ev.PhotoRef})
	if err != nil {
		return d.fail(ctx, key, ev, err)
	}
	if res.Submit {
		return d.submit(ctx, key, ev, res.Report)
	}
	if res.Session.State != sess.State {
		logger.Debug(ctx, "report", "report.step",
			slog.String("state", string(sess.State)),
			slog.String("next_state", string(res.Session.State)),
		)
	}
	d.store.Put(key, res.Session)
	return d.replyWith(ctx, ev, res.Reply)
}

// submit delivers r to the group. The session is cleared only once the
// report text reached the group.
func (d *Dispatcher) submit(ctx context.Context, key state.Key, ev Event, r report.Report) error {
	from := report.Sender{ID: ev.UserID, Username: ev.Username, FirstName: ev.FirstName}

	if err := d.messenger.SendText(ctx, d.group, Message{Text: report.Final(r, from), Mode: ModeMarkdown}); err != nil {
		if d.recorder != nil {
			d.recorder.DeliveryFailed()
		}
		logger.Error(ctx, "report", "report.delivery_failed", slog.String("err", err.Error()))
		if replyErr := d.reply(ctx, ev, Message{Text: deliveryFailedText}); replyErr != nil {
			err = errors.Join(err, replyErr)
		}
		return fmt.Errorf("bot: deliver report: %w", err)
	}
	if r.HasPhoto() {
		// The text already reached the group; a lost photo does not resend the report.
		if err := d.messenger.SendPhoto(ctx, d.group, r.PhotoRef); err != nil {
			logger.Warn(ctx, "report", "report.photo_failed", slog.String("err", err.Error()))
		}
	}

	attrs := []slog.Attr{
		slog.Bool("anonymous", r.Anonymous()),
		slog.Bool("photo", r.HasPhoto()),
	}
	if d.archive != nil {
		id, err := d.archive.Save(ctx, archive.Entry{Report: r, Sender: from, ChatID: ev.ChatID, SubmittedAt: d.now()})
		if err != nil {
			logger.Warn(ctx, "report", "report.archive_failed", slog.String("err", err.Error()))
		} else {
			attrs = append(attrs, slog.String("report_id", id))
		}
	}
	d.store.Clear(key)
	if d.recorder != nil {
		d.recorder.ReportSubmitted(r.Anonymous())
	}
	logger.Info(ctx, "report", "report.submitted", attrs...)

	return d.reply(ctx, ev, Message{Text: submittedText, Mode: ModeMarkdown})
}

// fail resets a conversation the form could not process.
func (d *Dispatcher) fail(ctx context.Context, key state.Key, ev Event, err error) error {
	d.store.Clear(key)
	logger.Error(ctx, "report", "report.step_failed", slog.String("err", err.Error()))
	if replyErr := d.reply(ctx, ev, Message{Text: unexpectedErrorText}); replyErr != nil {
		err = errors.Join(err, replyErr)
	}
	return fmt.Errorf("bot: handle event: %w", err)
}

func (d *Dispatcher) replyWith(ctx context.Context, ev Event, r report.Reply) error {
	msg := Message{Text: r.Text, Keyboard: r.Keyboard}
	if r.Markdown {
		msg.Mode = ModeMarkdown
	}
	return d.reply(ctx, ev, msg)
}

func (d *Dispatcher) reply(ctx context.Context, ev Event, msg Message) error {
	if err := d.messenger.SendText(ctx, ev.ChatID, msg); err != nil {
		return fmt.Errorf("bot: reply: %w", err)
	}
	return nil
}
