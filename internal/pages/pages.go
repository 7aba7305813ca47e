package pages

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/session"
	"hr-analytics/internal/shared/server/middleware"
)

//go:embed templates/*.html
var embedded embed.FS

// Departments offered by the prediction form.
var Departments = []string{
	"sales", "technical", "support", "IT", "product_mng",
	"marketing", "RandD", "accounting", "hr", "management",
}

// LoadTemplates parses login.html, signup.html and index.html from dir, or
// from the built-in set when dir is empty.
func LoadTemplates(dir string) (*template.Template, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	tmpl, err := template.ParseFS(fsys, "login.html", "signup.html", "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Handler renders the HTML pages.
type Handler struct {
	StaticDir string
	LoginPath string
	HomePath  string
}

func NewHandler(staticDir string) *Handler {
	return &Handler{StaticDir: staticDir, LoginPath: "/login", HomePath: "/home"}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.root)
	r.GET("/favicon.ico", h.favicon)
	r.GET("/login", h.render("login.html"))
	r.GET("/signup", h.render("signup.html"))
	r.GET("/home", middleware.RequireLogin(h.LoginPath), h.home)
}

func (h *Handler) root(c *gin.Context) {
	if session.FromContext(c).LoggedIn {
		c.Redirect(http.StatusFound, h.HomePath)
		return
	}
	c.Redirect(http.StatusFound, h.LoginPath)
}

func (h *Handler) favicon(c *gin.Context) {
	c.File(filepath.Join(h.StaticDir, "favicon.ico"))
}

func (h *Handler) render(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, nil)
	}
}

func (h *Handler) home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Email":       session.FromContext(c).Email,
		"Departments": Departments,
	})
}
