package handler

import (
	"net/http"
)

// ListAssignments возвращает активные закрепления.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.svc.Assignments.ListActiveAssignments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"asignaciones": newAssignmentList(assignments)})
}

// UnassignedClients возвращает клиентов без продавца.
func (h *Handler) UnassignedClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Assignments.ListUnassignedClients(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if clients == nil {
		h.writeJSON(w, http.StatusOK, "", map[string]any{"clientes": []any{}})
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"clientes": clients})
}

// SellerWorkload возвращает продавцов с числом клиентов.
func (h *Handler) SellerWorkload(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.Assignments.ListSellerWorkload(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sellers == nil {
		h.writeJSON(w, http.StatusOK, "", map[string]any{"vendedores": []any{}})
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"vendedores": sellers})
}

type assignRequest struct {
	SellerID int64 `json:"id_vendedor"`
	ClientID int64 `json:"id_cliente"`
}

// Assign закрепляет клиента за продавцом.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SellerID <= 0 || req.ClientID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, "id_vendedor and id_cliente are required", nil)
		return
	}

	id, err := h.svc.Assignments.Assign(r.Context(), req.SellerID, req.ClientID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "client assigned", map[string]int64{"asignacionId": id})
}

type reassignRequest struct {
	AssignmentID int64 `json:"id_asignacion"`
	NewSellerID  int64 `json:"nuevo_id_vendedor"`
}

// Reassign передаёт клиента другому продавцу.
func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req reassignRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.AssignmentID <= 0 || req.NewSellerID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, "id_asignacion and nuevo_id_vendedor are required", nil)
		return
	}

	id, err := h.svc.Assignments.Reassign(r.Context(), req.AssignmentID, req.NewSellerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "client reassigned", map[string]int64{"nuevaAsignacionId": id})
}

// Unassign снимает закрепление.
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Assignments.Unassign(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "assignment removed", nil)
}
