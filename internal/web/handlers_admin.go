package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"placement/internal/portal"
	"placement/internal/web/flash"
)

func (s *Server) adminDashboard(c *gin.Context) {
	d, err := s.Reports.Dashboard(c.Request.Context())
	if err != nil {
		s.fail(c, err, "/")
		return
	}
	s.page(c, http.StatusOK, "admin_dashboard", gin.H{"Stats": d})
}

func (s *Server) reports(c *gin.Context) {
	r, err := s.Reports.Report(c.Request.Context())
	if err != nil {
		s.fail(c, err, "/admin_dashboard")
		return
	}
	s.page(c, http.StatusOK, "reports", gin.H{"Report": r})
}

type placementForm struct {
	Company     string `form:"company"`
	Role        string `form:"role"`
	Location    string `form:"location"`
	Description string `form:"description"`
	Link        string `form:"link"`
	Eligibility string `form:"eligibility"`
	Deadline    string `form:"deadline"`
}

func (f placementForm) placement(id int64) portal.Placement {
	return portal.Placement{ID: id, Company: f.Company, Role: f.Role, Location: f.Location,
		Description: f.Description, Link: f.Link, Eligibility: f.Eligibility, Deadline: f.Deadline}
}

func (s *Server) managePlacements(c *gin.Context) {
	list, err := s.Board.Search(c.Request.Context(), "", "", 0)
	if err != nil {
		s.fail(c, err, "/admin_dashboard")
		return
	}
	s.page(c, http.StatusOK, "manage_placements", gin.H{"Placements": list, "New": portal.Placement{}})
}

func (s *Server) createPlacement(c *gin.Context) {
	var f placementForm
	_ = c.ShouldBind(&f)
	if _, err := s.Board.Create(c.Request.Context(), f.placement(0)); err != nil {
		s.fail(c, err, "/manage_placements")
		return
	}
	flash.Add(c, flash.Success, "Placement added successfully!")
	c.Redirect(http.StatusFound, "/manage_placements")
}

func (s *Server) editPlacementPage(c *gin.Context) {
	pid, ok := idParam(c, "pid")
	if !ok {
		s.notFound(c)
		return
	}
	p, err := s.Board.Get(c.Request.Context(), pid)
	if err != nil {
		s.fail(c, err, "/manage_placements")
		return
	}
	s.page(c, http.StatusOK, "edit_placement", gin.H{"Placement": p})
}

func (s *Server) editPlacement(c *gin.Context) {
	pid, ok := idParam(c, "pid")
	if !ok {
		s.notFound(c)
		return
	}
	var f placementForm
	_ = c.ShouldBind(&f)
	if err := s.Board.Update(c.Request.Context(), f.placement(pid)); err != nil {
		s.fail(c, err, "/edit_placement/"+strconv.FormatInt(pid, 10))
		return
	}
	flash.Add(c, flash.Success, "Placement updated successfully!")
	c.Redirect(http.StatusFound, "/manage_placements")
}

func (s *Server) deletePlacement(c *gin.Context) {
	pid, ok := idParam(c, "pid")
	if !ok {
		s.notFound(c)
		return
	}
	if err := s.Board.Delete(c.Request.Context(), pid); err != nil {
		s.fail(c, err, "/manage_placements")
		return
	}
	flash.Add(c, flash.Info, "Placement deleted.")
	c.Redirect(http.StatusFound, "/manage_placements")
}

func (s *Server) viewApplications(c *gin.Context) {
	pid, ok := idParam(c, "pid")
	if !ok {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	p, err := s.Board.Get(ctx, pid)
	if err != nil {
		s.fail(c, err, "/manage_placements")
		return
	}
	apps, err := s.Applications.ListForPlacement(ctx, pid)
	if err != nil {
		s.fail(c, err, "/manage_placements")
		return
	}
	s.page(c, http.StatusOK, "view_applications", gin.H{"Placement": p, "Applications": apps})
}

func (s *Server) updateStatus(c *gin.Context) {
	appID, ok := idParam(c, "app_id")
	if !ok {
		s.notFound(c)
		return
	}
	if _, err := s.Applications.UpdateStatus(c.Request.Context(), appID, c.PostForm("status")); err != nil {
		s.fail(c, err, back(c, "/admin/applications"))
		return
	}
	flash.Add(c, flash.Success, "Application status updated.")
	c.Redirect(http.StatusFound, back(c, "/admin/applications"))
}

func (s *Server) allApplications(c *gin.Context) {
	apps, err := s.Applications.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err, "/admin_dashboard")
		return
	}
	s.page(c, http.StatusOK, "admin_applications", gin.H{"Applications": apps})
}

func (s *Server) manageStudents(c *gin.Context) {
	students, err := s.Accounts.ListStudents(c.Request.Context())
	if err != nil {
		s.fail(c, err, "/admin_dashboard")
		return
	}
	s.page(c, http.StatusOK, "manage_students", gin.H{"Students": students})
}

func (s *Server) editStudentPage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	u, err := s.Accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	s.page(c, http.StatusOK, "edit_student", gin.H{"Student": u})
}

func (s *Server) editStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	if err := s.Accounts.UpdateStudent(c.Request.Context(), id, c.PostForm("username"), c.PostForm("email")); err != nil {
		s.fail(c, err, "/students/edit_student/"+strconv.FormatInt(id, 10))
		return
	}
	flash.Add(c, flash.Success, "Student updated successfully!")
	c.Redirect(http.StatusFound, "/manage_students")
}

func (s *Server) deleteStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	if err := s.Accounts.DeleteStudent(c.Request.Context(), id); err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	flash.Add(c, flash.Info, "Student deleted.")
	c.Redirect(http.StatusFound, "/manage_students")
}

func (s *Server) studentResumes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	u, err := s.Accounts.GetUser(ctx, id)
	if err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	list, err := s.Resumes.ListForStudent(ctx, id)
	if err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	s.page(c, http.StatusOK, "student_resumes", gin.H{"Student": u, "Resumes": list})
}

func (s *Server) studentApplications(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	u, err := s.Accounts.GetUser(ctx, id)
	if err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	apps, err := s.Applications.ListForStudent(ctx, id)
	if err != nil {
		s.fail(c, err, "/manage_students")
		return
	}
	s.page(c, http.StatusOK, "student_applications", gin.H{"Student": u, "Applications": apps})
}
