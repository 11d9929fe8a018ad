package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/gusta765/portfolio/internal/contact"
	"github.com/gusta765/portfolio/internal/store"
)

const (
	invalidFormMessage = "Preencha nome, email e mensagem corretamente."
	networkMessage     = "Erro de rede ao enviar sua mensagem. Verifique sua conexão e tente novamente."
)

// Notice is the user-facing result of a contact submission.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"message"`
	Success     bool   `json:"-"`
}

func noticeFor(outcome contact.Outcome, err error) Notice {
	switch outcome {
	case contact.OutcomeSent:
		return Notice{
			Title:       "Mensagem enviada!",
			Description: "Obrigado pelo contato. Retornarei em breve.",
			Success:     true,
		}
	case contact.OutcomeRejected:
		var rejected *contact.RejectedError
		msg := contact.DefaultRejectedMessage
		if errors.As(err, &rejected) && rejected.Message != "" {
			msg = rejected.Message
		}
		return Notice{Title: "Falha ao enviar mensagem", Description: msg}
	default:
		return Notice{Title: "Falha ao enviar mensagem", Description: networkMessage}
	}
}

func trimMessage(msg contact.Message) contact.Message {
	return contact.Message{
		Name:    strings.TrimSpace(msg.Name),
		Email:   strings.TrimSpace(msg.Email),
		Message: strings.TrimSpace(msg.Message),
	}
}

// bindMessage decodes a submission with b, trims it and validates the
// trimmed fields, so blank-only values count as missing.
func bindMessage(c *gin.Context, b binding.Binding) (contact.Message, error) {
	var msg contact.Message
	if err := c.ShouldBindWith(&msg, b); err != nil {
		return msg, err
	}
	msg = trimMessage(msg)
	return msg, binding.Validator.ValidateStruct(&msg)
}

// deliver sends msg, counts the outcome and logs it to the store when one is
// configured.
func (s *Server) deliver(ctx context.Context, msg contact.Message) (contact.Outcome, Notice) {
	err := s.contact.Send(ctx, msg)
	outcome := contact.Classify(err)
	notice := noticeFor(outcome, err)
	s.metrics.ContactOutcome(outcome)

	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Warn().Err(err)
	}
	ev.Str("outcome", string(outcome)).Msg("contact submission")

	if s.store != nil {
		rec := store.ContactRecord{
			Name:    msg.Name,
			Email:   msg.Email,
			Message: msg.Message,
			Outcome: string(outcome),
		}
		if err != nil {
			rec.Detail = err.Error()
		}
		if err := s.store.RecordContact(ctx, rec); err != nil {
			s.logger.Error().Err(err).Msg("failed to record contact message")
		}
	}
	return outcome, notice
}

// contactSubmit handles the HTML form and answers with a fragment that
// replaces the form's status area.
func (s *Server) contactSubmit(c *gin.Context) {
	msg, err := bindMessage(c, binding.Default(c.Request.Method, c.ContentType()))
	if err != nil {
		s.render(c, http.StatusOK, "contact-result.html", gin.H{
			"notice": Notice{Title: "Dados inválidos", Description: invalidFormMessage},
		})
		return
	}

	_, notice := s.deliver(c.Request.Context(), msg)
	s.render(c, http.StatusOK, "contact-result.html", gin.H{
		"notice": notice,
	})
}

func (s *Server) apiContact(c *gin.Context) {
	msg, err := bindMessage(c, binding.JSON)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", invalidFormMessage)
		return
	}

	outcome, notice := s.deliver(c.Request.Context(), msg)
	switch outcome {
	case contact.OutcomeSent:
		c.JSON(http.StatusOK, gin.H{
			"status":  string(outcome),
			"title":   notice.Title,
			"message": notice.Description,
		})
	case contact.OutcomeRejected:
		writeError(c, http.StatusUnprocessableEntity, "REJECTED", notice.Description)
	default:
		writeError(c, http.StatusBadGateway, "NETWORK_ERROR", notice.Description)
	}
}
