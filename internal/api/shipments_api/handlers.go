package shipments_api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/go-chi/chi/v5"
)

type createShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
	SenderName     string `json:"sender_name"`
	SenderPhone    string `json:"sender_phone"`
	ReceiverName   string `json:"receiver_name"`
	ReceiverPhone  string `json:"receiver_phone"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
}

type appendEventRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Note     string `json:"note"`
}

type shipmentResponse struct {
	Shipment *models.Shipment `json:"shipment"`
	Warning  string           `json:"warning,omitempty"`
}

type eventResponse struct {
	Event   *models.TrackingEvent `json:"event"`
	Warning string                `json:"warning,omitempty"`
}

type eventsResponse struct {
	Events []*models.TrackingEvent `json:"events"`
}

func (a *ShipmentsAPI) track(w http.ResponseWriter, r *http.Request) {
	v, err := a.shipments.GetTrackingView(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		writePublicError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *ShipmentsAPI) searchShipment(w http.ResponseWriter, r *http.Request) {
	sh, err := a.shipments.GetShipmentByTrackingNumber(r.Context(), r.URL.Query().Get("tracking_number"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentResponse{Shipment: sh})
}

func (a *ShipmentsAPI) createShipment(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sh, err := a.shipments.CreateShipment(r.Context(), models.ShipmentCreateInput{
		TrackingNumber: req.TrackingNumber,
		SenderName:     req.SenderName,
		SenderPhone:    req.SenderPhone,
		ReceiverName:   req.ReceiverName,
		ReceiverPhone:  req.ReceiverPhone,
		Origin:         req.Origin,
		Destination:    req.Destination,
	})
	warning, ok := partialWarning(err)
	if err != nil && !ok {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shipmentResponse{Shipment: sh, Warning: warning})
}

func (a *ShipmentsAPI) getShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	sh, err := a.shipments.GetShipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentResponse{Shipment: sh})
}

// updateShipment: tracking_number, id и created_at в теле игнорируются,
// их нет в ShipmentFieldsUpdate.
func (a *ShipmentsAPI) updateShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	var upd models.ShipmentFieldsUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	sh, err := a.shipments.UpdateShipmentFields(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentResponse{Shipment: sh})
}

func (a *ShipmentsAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	evs, err := a.events.ListEventsForShipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if evs == nil {
		evs = []*models.TrackingEvent{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: evs})
}

func (a *ShipmentsAPI) appendEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	var req appendEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := a.events.AppendEvent(r.Context(), id, models.AppendEventInput{
		Status:   req.Status,
		Location: req.Location,
		Note:     req.Note,
	})
	warning, ok := partialWarning(err)
	if err != nil && !ok {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventResponse{Event: ev, Warning: warning})
}

func (a *ShipmentsAPI) submitContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactMessage
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.contact.Submit(r.Context(), req)
	if err != nil {
		if statusOf(err) == http.StatusServiceUnavailable {
			slog.Error("contact submit failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: msgContactRetryLater})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (a *ShipmentsAPI) partnership(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"whatsapp_url": a.contact.PartnershipURL()})
}

func shipmentID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "id: must be a positive integer"})
		return 0, false
	}
	return id, true
}
