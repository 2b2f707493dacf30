package controller

import (
	"errors"
	"net/http"
	"strconv"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/service"
	"treasure_hunt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type TrackerController struct {
	Board          *service.Board
	Tracker        *service.TrackerService
	MaxUploadBytes int64
}

func NewTrackerController(board *service.Board, tracker *service.TrackerService, maxUploadBytes int64) *TrackerController {
	return &TrackerController{Board: board, Tracker: tracker, MaxUploadBytes: maxUploadBytes}
}

type CreateParticipantRequest struct {
	Name string `json:"name"`
}

type SelectQuestRequest struct {
	QuestID string `json:"questId" binding:"required"`
}

// ListQuests godoc
// @Summary List quests
// @Description The quest catalog with tasks, hints and accepted file types
// @Tags quests
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Quest}
// @Router /quests [get]
func (c *TrackerController) ListQuests(ctx *gin.Context) {
	util.Success(ctx, c.Tracker.Progress().Catalog().Quests())
}

// GetBoard godoc
// @Summary Board snapshot
// @Description Participants with completion, lock state and task badges for one quest
// @Tags board
// @Produce json
// @Param quest query string false "quest id, defaults to the active quest"
// @Param refresh query bool false "reload participants first"
// @Success 200 {object} util.Response{data=model.BoardView}
// @Failure 404 {object} util.Response
// @Router /board [get]
func (c *TrackerController) GetBoard(ctx *gin.Context) {
	if refresh, _ := strconv.ParseBool(ctx.Query("refresh")); refresh {
		// a failed reload is reported through the snapshot's error field
		c.Board.Load(ctx.Request.Context())
	}
	c.respondBoard(ctx, ctx.Query("quest"))
}

// RefreshBoard godoc
// @Summary Reload participants
// @Tags board
// @Produce json
// @Success 200 {object} util.Response{data=model.BoardView}
// @Failure 502 {object} util.Response
// @Router /board/refresh [post]
func (c *TrackerController) RefreshBoard(ctx *gin.Context) {
	if err := c.Board.Load(ctx.Request.Context()); err != nil {
		respondError(ctx, err, util.MsgLoadFailed)
		return
	}
	c.respondBoard(ctx, "")
}

// SelectQuest godoc
// @Summary Switch the active quest
// @Tags board
// @Accept json
// @Produce json
// @Param request body SelectQuestRequest true "quest to show"
// @Success 200 {object} util.Response{data=model.BoardView}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /board/quest [put]
func (c *TrackerController) SelectQuest(ctx *gin.Context) {
	var req SelectQuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Board.SelectQuest(req.QuestID); err != nil {
		respondError(ctx, err, "")
		return
	}
	c.respondBoard(ctx, "")
}

// ListParticipants godoc
// @Summary List participants with progress
// @Description Fetches every participant and derives progress for all quests
// @Tags participants
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ParticipantView}
// @Failure 502 {object} util.Response
// @Router /participants [get]
func (c *TrackerController) ListParticipants(ctx *gin.Context) {
	participants, err := c.Tracker.ListParticipants(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, util.MsgLoadFailed)
		return
	}

	views := make([]model.ParticipantView, 0, len(participants))
	for i := range participants {
		views = append(views, c.Tracker.Progress().ParticipantProgress(&participants[i]))
	}
	util.Success(ctx, views)
}

// CreateParticipant godoc
// @Summary Register a participant
// @Tags participants
// @Accept json
// @Produce json
// @Param request body CreateParticipantRequest true "participant name"
// @Success 201 {object} util.Response{data=model.BoardView}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /participants [post]
func (c *TrackerController) CreateParticipant(ctx *gin.Context) {
	var req CreateParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Board.Register(ctx.Request.Context(), req.Name); err != nil {
		respondError(ctx, err, util.MsgRegisterFailed)
		return
	}

	view, err := c.Board.Snapshot("")
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// GetProgress godoc
// @Summary Progress of one participant
// @Tags participants
// @Produce json
// @Param id path string true "participant id"
// @Success 200 {object} util.Response{data=model.ParticipantView}
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /participants/{id}/progress [get]
func (c *TrackerController) GetProgress(ctx *gin.Context) {
	participant, err := c.Tracker.GetParticipant(ctx.Request.Context(), model.ID(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err, util.MsgLoadFailed)
		return
	}
	util.Success(ctx, c.Tracker.Progress().ParticipantProgress(participant))
}

// SubmitTask godoc
// @Summary Submit evidence for a task
// @Description Uploads the file, records the submission and reloads the board
// @Tags participants
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "participant id"
// @Param questId path string true "quest id"
// @Param taskId path int true "task id"
// @Param file formData file true "evidence file"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "quest locked"
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "already completed or in progress"
// @Failure 413 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /participants/{id}/quests/{questId}/tasks/{taskId}/submission [post]
func (c *TrackerController) SubmitTask(ctx *gin.Context) {
	taskID, err := strconv.Atoi(ctx.Param("taskId"))
	if err != nil {
		util.BadRequest(ctx, "taskId must be a number")
		return
	}

	if c.MaxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.MaxUploadBytes+formOverhead)
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, util.ErrFileTooLarge.Error())
			return
		}
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	sub, err := c.Board.Submit(ctx.Request.Context(), service.TaskUpload{
		ParticipantID: model.ID(ctx.Param("id")),
		QuestID:       ctx.Param("questId"),
		TaskID:        taskID,
		FileName:      header.Filename,
		Size:          header.Size,
		Content:       file,
	})
	if err != nil {
		respondError(ctx, err, util.MsgSubmitFailed)
		return
	}
	util.Created(ctx, sub)
}

func (c *TrackerController) respondBoard(ctx *gin.Context, questID string) {
	view, err := c.Board.Snapshot(questID)
	if err != nil {
		respondError(ctx, err, "")
		return
	}
	util.Success(ctx, view)
}

// respondError maps the error kinds to status codes. Backend failures get the
// generic message; their cause only goes to the log.
func respondError(ctx *gin.Context, err error, backendMsg string) {
	switch {
	case errors.Is(err, util.ErrBlankName),
		errors.Is(err, util.ErrInvalidFileName),
		errors.Is(err, util.ErrFileTypeNotAccepted),
		errors.Is(err, util.ErrVideoTooLong):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, util.ErrQuestNotFound),
		errors.Is(err, util.ErrTaskNotFound),
		errors.Is(err, util.ErrParticipantNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrQuestLocked):
		util.Forbidden(ctx, err.Error())
	case errors.Is(err, util.ErrDuplicateSubmission):
		util.Conflict(ctx, util.ErrDuplicateSubmission.Error())
	case errors.Is(err, util.ErrTaskAlreadyCompleted),
		errors.Is(err, util.ErrSubmissionInProgress):
		util.Conflict(ctx, err.Error())
	case util.IsBackendFailure(err):
		util.BadGateway(ctx, backendMsg, err)
	default:
		util.LogInternalError(ctx, err)
	}
}
