package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intermernet/meshview/feed"
	"github.com/intermernet/meshview/viewer"
	"github.com/intermernet/meshview/web"
)

var (
	webPort   = flag.String("web", "8080", "HTTP server port")
	portName  = flag.String("serial", "", "Serial port of an orientation sensor (e.g., COM3 on Windows, /dev/ttyUSB0 on Linux); empty disables it")
	baudRate  = flag.Int("baud", 115200, "Baud rate for serial port")
	uploadDir = flag.String("uploads", "uploads", "Directory for uploaded images")
	objDir    = flag.String("objdir", "obj_files", "Directory where converted .obj files are looked up")
	modelPath = flag.String("model", "", "OBJ file to show when a viewer connects")
	frameRate = flag.Int("fps", 60, "Viewer frames per second")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub()
	if *modelPath != "" {
		data, err := os.ReadFile(*modelPath)
		if err != nil {
			log.Fatalf("Error reading model: %v", err)
		}
		hub.SetModel(string(data))
		log.Printf("Loaded model %s", *modelPath)
	}

	// Start serial port listener
	if *portName != "" {
		log.Printf("Listening to serial port: %s at %d baud", *portName, *baudRate)
		go feed.Listen(ctx, *portName, *baudRate, func(q feed.Quaternion) {
			x, y, z := q.Euler()
			hub.Orient(viewer.Rotation{X: x, Y: y, Z: z})
		})
	}

	srv, err := web.NewServer(ctx, web.Config{
		UploadDir: *uploadDir,
		ObjDir:    *objDir,
		FrameRate: *frameRate,
	}, hub)
	if err != nil {
		log.Fatal(err)
	}

	addr := fmt.Sprintf(":%s", *webPort)
	httpServer := &http.Server{Addr: addr, Handler: srv}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting web server on http://localhost%s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe error:", err)
	}
}
