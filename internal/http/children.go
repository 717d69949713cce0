package httpapi

import (
	"mime/multipart"
	"net/http"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ChildRequest struct {
	Name      string  `json:"name"`
	BirthDate string  `json:"birthDate"`
	School    *string `json:"school"`
	Photo     *string `json:"photo"`
}

type ChildUpdateRequest struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	School    *string `json:"school"`
	Photo     *string `json:"photo"`
}

type ChildResponse struct {
	Child ChildDTO `json:"child"`
}

type ChildrenResponse struct {
	Children []ChildDTO `json:"children"`
}

type AccessResponse struct {
	Owner     MemberDTO   `json:"owner"`
	CoParents []MemberDTO `json:"coParents"`
	Shares    []MemberDTO `json:"shares"`
}

type ProfessionalsResponse struct {
	Professionals []ProfessionalDTO `json:"professionals"`
}

func (s *Server) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req ChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	child, err := services.CreateChild(r.Context(), s.DB, *CurrentUser(r), services.ChildInput{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		School:    req.School,
		Photo:     req.Photo,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	dto := toChildDTO(child)
	dto.Access = models.CapabilityOwner
	WriteJSON(w, http.StatusCreated, ChildResponse{Child: dto})
}

func (s *Server) ListChildren(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListChildren(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChildrenResponse{Children: toChildAccessDTOs(items)})
}

func (s *Server) GetChild(w http.ResponseWriter, r *http.Request) {
	item, err := services.GetChild(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	dto := toChildDTO(item.Child)
	dto.Access = item.Access
	WriteJSON(w, http.StatusOK, ChildResponse{Child: dto})
}

func (s *Server) UpdateChild(w http.ResponseWriter, r *http.Request) {
	var req ChildUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	child, err := services.UpdateChild(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), services.ChildUpdate{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		School:    req.School,
		Photo:     req.Photo,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChildResponse{Child: toChildDTO(child)})
}

// formFile pulls the "file" part of a multipart upload. On failure the
// response has already been written.
func formFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoBytes+(1<<20))
	if err := r.ParseMultipartForm(services.MaxPhotoBytes); err != nil {
		WriteError(w, http.StatusBadRequest, services.CodeValidation, "The upload is empty or too large")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, services.CodeValidation, "The upload is empty")
		return nil, false
	}
	return file, true
}

func (s *Server) UploadChildPhoto(w http.ResponseWriter, r *http.Request) {
	file, ok := formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()
	child, err := services.SetChildPhoto(r.Context(), s.DB, s.Storage, CurrentUser(r).ID, chi.URLParam(r, "childId"), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChildResponse{Child: toChildDTO(child)})
}

func (s *Server) ChildAccess(w http.ResponseWriter, r *http.Request) {
	members, err := services.ListChildMembers(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, AccessResponse{
		Owner:     MemberDTO{UserID: members.Owner.UserID, Name: members.Owner.Name, Email: members.Owner.Email},
		CoParents: toMemberDTOs(members.CoParents),
		Shares:    toMemberDTOs(members.Shares),
	})
}

func (s *Server) RemoveCoParent(w http.ResponseWriter, r *http.Request) {
	err := services.RemoveCoParent(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveShare(w http.ResponseWriter, r *http.Request) {
	err := services.RemoveShare(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListProfessionals(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ProfessionalsResponse{Professionals: toProfessionalDTOs(items)})
}

func (s *Server) RemoveProfessional(w http.ResponseWriter, r *http.Request) {
	err := services.RemoveProfessional(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), chi.URLParam(r, "professionalId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ProfessionalChildren(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListProfessionalChildren(r.Context(), s.DB, *CurrentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChildrenResponse{Children: toChildAccessDTOs(items)})
}
