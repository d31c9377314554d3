package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/middleware"
	"trackmymess/internal/models"
	"trackmymess/internal/services"
)

// StudentHandler handles roster endpoints, scoped to the caller's mess.
type StudentHandler struct {
	students *services.StudentService
}

func NewStudentHandler(students *services.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List returns students visible to the caller, newest first.
// GET /api/students?messId=
func (h *StudentHandler) List(c echo.Context) error {
	p := middleware.GetPrincipal(c)
	students, err := h.students.ListStudents(p, uintQuery(c, "messId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, students)
}

// Get returns one student.
// GET /api/students/:id
func (h *StudentHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	student, err := h.students.GetStudent(middleware.GetPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, student)
}

type addStudentRequest struct {
	MessID   *uint   `json:"mess_id"`
	Name     string  `json:"name" validate:"required"`
	Mobile   string  `json:"mobile" validate:"required"`
	Address  string  `json:"address"`
	Gender   string  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	MealPlan string  `json:"meal_plan" validate:"omitempty,oneof=Full Half Custom"`
	Fee      float64 `json:"fee" validate:"required,gt=0"`
	Remarks  string  `json:"remarks"`
}

// Add enrols a student, rejecting the add when the mess is at capacity.
// POST /api/students
func (h *StudentHandler) Add(c echo.Context) error {
	var req addStudentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	student, err := h.students.AddStudent(middleware.GetPrincipal(c), services.AddStudentInput{
		MessID:   req.MessID,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Address:  req.Address,
		Gender:   req.Gender,
		MealPlan: models.MealPlan(req.MealPlan),
		Fee:      req.Fee,
		Remarks:  req.Remarks,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Student added successfully",
		"student": student,
	})
}

type updateStudentRequest struct {
	Name     *string  `json:"name"`
	Mobile   *string  `json:"mobile"`
	Address  *string  `json:"address"`
	Gender   *string  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	MealPlan *string  `json:"meal_plan" validate:"omitempty,oneof=Full Half Custom"`
	Fee      *float64 `json:"fee" validate:"omitempty,gt=0"`
	Remarks  *string  `json:"remarks"`

	MembershipEnd *string `json:"membership_end"`
	// EndDate is the legacy alias for membership_end.
	EndDate *string `json:"end_date"`
}

// Update applies a partial update to a student.
// PUT /api/students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req updateStudentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := services.UpdateStudentInput{
		Name:    req.Name,
		Mobile:  req.Mobile,
		Address: req.Address,
		Gender:  req.Gender,
		Fee:     req.Fee,
		Remarks: req.Remarks,
	}
	if req.MealPlan != nil {
		plan := models.MealPlan(*req.MealPlan)
		in.MealPlan = &plan
	}
	if req.MembershipEnd != nil {
		if in.MembershipEnd, err = parseDate(*req.MembershipEnd); err != nil {
			return err
		}
	}
	if req.EndDate != nil {
		if in.EndDate, err = parseDate(*req.EndDate); err != nil {
			return err
		}
	}

	student, err := h.students.UpdateStudent(middleware.GetPrincipal(c), id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Student updated successfully",
		"student": student,
	})
}

// Delete removes a student, reversing their payments from mess revenue.
// DELETE /api/students/:id
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.students.DeleteStudent(middleware.GetPrincipal(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}

// ToggleFreeze flips a student's freeze state.
// PUT /api/students/:id/freeze
func (h *StudentHandler) ToggleFreeze(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	student, err := h.students.ToggleFreeze(middleware.GetPrincipal(c), id)
	if err != nil {
		return err
	}

	state := "unfrozen"
	if student.IsFrozen {
		state = "frozen"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Student %s successfully", state),
		"student": student,
	})
}
