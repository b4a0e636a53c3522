package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/contact"
)

const (
	contactSuccessText = "Message sent successfully!"
	contactInvalidText = "Please fill in your name, a valid email address and a message."
	contactFailedText  = "Failed to send message. Please try again later."
)

func (s *Server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{"title": "Contact Me"})
}

// handleContact submits the form. Success replaces the whole contact card
// with the thank-you view; errors only fill the status area so the form
// keeps what the visitor typed.
func (s *Server) handleContact(c *gin.Context) {
	if s.contact == nil {
		_ = c.Error(contact.ErrNotConfigured)
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": contactFailedText})
		return
	}

	m := contact.Message{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Subject:  c.PostForm("subject"),
		Body:     c.PostForm("message"),
		Honeypot: c.PostForm("_gotcha"),
	}
	if err := s.contact.Submit(c.Request.Context(), m); err != nil {
		_ = c.Error(err)
		text := contactFailedText
		if errors.Is(err, contact.ErrInvalidMessage) {
			text = contactInvalidText
		}
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": text})
		return
	}

	c.Header("HX-Retarget", "#contact-card")
	c.HTML(http.StatusOK, "contact-success.html", gin.H{"success": contactSuccessText})
}
