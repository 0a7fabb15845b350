package handlers

import (
	"errors"

	"github.com/futig/rag-gateway/internal/entity"
)

const (
	msgWelcome = "¡Hola! Soy el asistente virtual de la empresa. " +
		"Escribime tu consulta o enviame un mensaje de voz y te respondo."

	msgUnsupported    = "Por ahora solo entiendo mensajes de texto y de voz."
	msgVoiceTooLarge  = "El audio es demasiado largo. Probá con un mensaje más corto."
	msgVoiceDownload  = "No pude descargar el audio. Intentá enviarlo de nuevo."
	msgNotRecognized  = "No pude entender el audio. ¿Podés repetirlo o escribir la consulta?"
	msgEmptyQuestion  = "Necesito una consulta para poder responder."
	msgServiceFailure = "El servicio no está disponible en este momento. Intentá más tarde."
	msgGenericFailure = "Ocurrió un error inesperado. Intentá de nuevo."

	// MsgRateLimited is sent by the rate limiter middleware.
	MsgRateLimited = "Estás enviando mensajes muy rápido. Esperá un momento, por favor."

	// MsgPanicRecovered is sent by the recovery middleware.
	MsgPanicRecovered = "Ocurrió un error. Intentá de nuevo en unos segundos."
)

// userMessage maps a chat failure onto the text shown in the chat.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errVoiceTooLarge), errors.Is(err, entity.ErrPayloadTooLarge):
		return msgVoiceTooLarge
	case errors.Is(err, errVoiceDownload):
		return msgVoiceDownload
	case errors.Is(err, entity.ErrSpeechNotRecognized):
		return msgNotRecognized
	case errors.Is(err, entity.ErrInvalidInput):
		return msgEmptyQuestion
	case errors.Is(err, entity.ErrUpstreamFailure), errors.Is(err, entity.ErrRetrievalFailure):
		return msgServiceFailure
	default:
		return msgGenericFailure
	}
}
