package server

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHistory(c echo.Context) error {
	roomID := c.Param("id")
	if roomID == "" {
		return c.String(http.StatusBadRequest, "Room ID required")
	}

	history, err := s.history.RoomHistory(c.Request().Context(), roomID)
	if err != nil {
		slog.Error("Failed to fetch history", "room_id", roomID, "error", err)
		return c.String(http.StatusInternalServerError, "Failed to fetch history")
	}

	return c.JSON(http.StatusOK, history)
}

// handleExportCSV flattens the room history into one row per persisted vote.
func (s *Server) handleExportCSV(c echo.Context) error {
	roomID := c.Param("id")
	if roomID == "" {
		return c.String(http.StatusBadRequest, "Room ID required")
	}

	history, err := s.history.RoomHistory(c.Request().Context(), roomID)
	if err != nil {
		slog.Error("Failed to export history", "room_id", roomID, "error", err)
		return c.String(http.StatusInternalServerError, "Failed to export history")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Timestamp", "Session", "Round", "User", "Vote", "Average", "Median"})
	for _, session := range history {
		for _, round := range session.Rounds {
			for _, vote := range round.Votes {
				_ = w.Write([]string{
					round.RevealedAt.Format(time.RFC3339),
					session.ID.String(),
					strconv.Itoa(round.RoundNumber),
					vote.UserName,
					vote.Vote,
					formatStat(round.Average),
					formatStat(round.Median),
				})
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="poker-planning-%s.csv"`, roomID))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
