package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"

	"placement/internal/apperr"
	"placement/internal/jobfeed"
	"placement/internal/logger"
	"placement/internal/portal"
	"placement/internal/resume"
	"placement/internal/web/flash"
)

func (s *Server) studentDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := currentUserID(c)
	apps, err := s.Applications.ListForStudent(ctx, uid)
	if err != nil {
		s.fail(c, err, "/")
		return
	}
	user, err := s.Accounts.Profile(ctx, uid)
	if err != nil {
		s.fail(c, err, "/logout")
		return
	}
	s.page(c, http.StatusOK, "student_dashboard", gin.H{"User": user, "Applications": apps})
}

// placements shows local listings and, when a query is given, external jobs fetched alongside.
func (s *Server) placements(c *gin.Context) {
	ctx := c.Request.Context()
	q, loc := c.Query("q"), c.Query("location")

	var (
		wg   sync.WaitGroup
		jobs []jobfeed.Job
	)
	if q != "" && s.Jobs.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs = s.Jobs.Search(ctx, q, loc)
		}()
	}
	list, err := s.Board.Search(ctx, q, loc, currentUserID(c))
	wg.Wait()
	if err != nil {
		s.fail(c, err, "/")
		return
	}
	s.page(c, http.StatusOK, "placements", gin.H{"Placements": list, "Jobs": jobs, "Query": q, "Location": loc})
}

func (s *Server) apply(c *gin.Context) {
	pid, ok := idParam(c, "pid")
	if !ok {
		s.notFound(c)
		return
	}
	if _, err := s.Applications.Apply(c.Request.Context(), currentUserID(c), pid); err != nil {
		s.fail(c, err, back(c, "/placements"))
		return
	}
	flash.Add(c, flash.Success, "Application submitted successfully!")
	c.Redirect(http.StatusFound, back(c, "/placements"))
}

func (s *Server) myApplications(c *gin.Context) {
	apps, err := s.Applications.ListForStudent(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err, "/")
		return
	}
	s.page(c, http.StatusOK, "my_applications", gin.H{"Applications": apps})
}

func (s *Server) profilePage(c *gin.Context) {
	user, err := s.Accounts.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err, "/logout")
		return
	}
	s.page(c, http.StatusOK, "profile", gin.H{"User": user})
}

type profileForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Phone    string `form:"phone"`
	Skills   string `form:"skills"`
}

// updateProfile validates both files before writing either of them.
func (s *Server) updateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	var f profileForm
	if err := c.ShouldBind(&f); err != nil {
		s.fail(c, bindError(err), "/profile")
		return
	}
	update := portal.ProfileUpdate{Username: f.Username, Email: f.Email, Phone: f.Phone, Skills: f.Skills}

	picFile, _ := c.FormFile("profile_pic")
	resumeFile, _ := c.FormFile("resume")
	if picFile != nil && picFile.Filename != "" {
		if _, err := checkImage(picFile); err != nil {
			s.fail(c, err, "/profile")
			return
		}
	}
	if resumeFile != nil && resumeFile.Filename != "" && !resume.AllowedExtension(resume.SanitizeFilename(resumeFile.Filename)) {
		s.fail(c, apperr.New(apperr.CodeValidation, "Resume must be a PDF, DOC, DOCX or TXT file."), "/profile")
		return
	}

	if picFile != nil && picFile.Filename != "" {
		stored, err := s.Avatars.Save(ctx, picFile)
		if err != nil {
			s.fail(c, err, "/profile")
			return
		}
		update.ProfilePic = &stored
	}
	var resumePath string
	if resumeFile != nil && resumeFile.Filename != "" {
		stored := resume.StoredName(resume.SanitizeFilename(resumeFile.Filename), nowUTC())
		path, err := resume.SaveUpload(resumeFile, s.Config.ResumeDir, stored)
		if err != nil {
			s.discardProfileFiles(ctx, update.ProfilePic, "")
			s.fail(c, apperr.Wrap(apperr.CodeInternal, "save resume", err), "/profile")
			return
		}
		resumePath = path
		name := filepath.Base(path)
		update.Resume = &name
	}

	if _, err := s.Accounts.UpdateProfile(ctx, currentUserID(c), update); err != nil {
		s.discardProfileFiles(ctx, update.ProfilePic, resumePath)
		s.fail(c, err, "/profile")
		return
	}
	flash.Add(c, flash.Success, "Profile updated successfully!")
	c.Redirect(http.StatusFound, "/profile")
}

// discardProfileFiles removes uploads that no users row points at.
func (s *Server) discardProfileFiles(ctx context.Context, pic *string, resumePath string) {
	if pic != nil {
		s.Avatars.Discard(ctx, *pic)
	}
	if resumePath != "" {
		if err := os.Remove(resumePath); err != nil && !os.IsNotExist(err) {
			logger.From(ctx).Warn("remove resume", "path", resumePath, "err", err)
		}
	}
}

// serveUpload returns a file from dir. Names with path components are rejected.
func serveUpload(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("filename")
		if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err != nil || st.IsDir() {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.File(path)
	}
}

func (s *Server) resumeReviewPage(c *gin.Context) {
	s.page(c, http.StatusOK, "resume_review", nil)
}

func (s *Server) resumeReview(c *gin.Context) {
	fh, err := c.FormFile("resume")
	if err != nil {
		if tooLarge(err) {
			jsonError(c, apperr.New(apperr.CodeTooLarge, "File too large."))
			return
		}
		fh = nil
	}
	res, err := s.Intake.Review(c.Request.Context(), currentUserID(c), fh)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (s *Server) ratePage(c *gin.Context) {
	list, err := s.Feedback.List(c.Request.Context())
	if err != nil {
		s.fail(c, err, "/")
		return
	}
	s.page(c, http.StatusOK, "rate", gin.H{"Feedback": list})
}

type rateForm struct {
	Rating  int    `form:"rating"`
	Comment string `form:"comment"`
}

func (s *Server) rate(c *gin.Context) {
	var f rateForm
	_ = c.ShouldBind(&f)
	if _, err := s.Feedback.Submit(c.Request.Context(), currentUserID(c), f.Rating, f.Comment); err != nil {
		s.fail(c, err, "/rate")
		return
	}
	flash.Add(c, flash.Success, "Thanks for your feedback!")
	c.Redirect(http.StatusFound, "/rate")
}
