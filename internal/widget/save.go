package widget

import (
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// Save sends the text to the chosen destination. Without one it opens the
// picker instead.
func (w *Widget) Save() {
	in := w.cur
	if in == nil {
		return
	}
	if in.Status == SaveLoading || in.Status == SaveSuccess {
		return
	}
	if in.Destination.IsZero() {
		w.Navigate(ViewDestinationPicker)
		return
	}

	in.Status = SaveLoading
	in.ErrorKind = ErrorNone
	in.ErrorText = ""
	w.stopDismiss(in)

	if w.eff != nil {
		w.eff.Save(in.ID, messages.NewSaveToNotion(in.Text, in.Destination, in.SourceURL))
	}
}

// Retry repeats a failed save.
func (w *Widget) Retry() {
	if w.cur == nil || w.cur.Status != SaveError {
		return
	}
	w.Save()
}

// SaveFinished applies the router's answer to a save.
func (w *Widget) SaveFinished(id uint64, res messages.SaveResult) {
	in := w.live(id)
	if in == nil || in.Status != SaveLoading {
		return
	}
	if !res.Success {
		w.fail(in, res.Error)
		return
	}

	in.Status = SaveSuccess
	w.log.Info("saved",
		logger.String("destination", in.Destination.ID),
		logger.Int("chars", len(in.Text)),
	)

	delay := in.Settings.DismissDelay()
	if !in.Settings.AutoDismiss || delay <= 0 {
		return
	}
	in.closing = w.clock.AfterFunc(delay, func() {
		if w.live(id) != nil {
			w.Hide()
		}
	})
}

// SaveErrored records a save that never got an answer.
func (w *Widget) SaveErrored(id uint64, err error) {
	in := w.live(id)
	if in == nil || in.Status != SaveLoading {
		return
	}
	w.log.Warn("save request failed", logger.Error(err))
	w.fail(in, GenericSaveError)
}

func (w *Widget) fail(in *instance, msg string) {
	in.Status = SaveError
	in.ErrorText = msg
	if domain.IsDailyLimitError(msg) {
		in.ErrorKind = ErrorDailyLimit
	} else {
		in.ErrorKind = ErrorGeneric
	}
	if in.ErrorText == "" {
		in.ErrorText = GenericSaveError
	}
}
