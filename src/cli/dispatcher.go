package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"mvcclock/src/controller"
	"mvcclock/src/metrics"
	"mvcclock/src/pages"
)

// Dispatcher interprets console commands against a running page.
type Dispatcher struct {
	page     *pages.Page
	registry *pages.Registry
	console  *Console
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(page *pages.Page, registry *pages.Registry, console *Console) *Dispatcher {
	return &Dispatcher{
		page:     page,
		registry: registry,
		console:  console,
	}
}

// Run processes interactive commands until exit or end of input. It reports
// true only when the exit command was given; running out of input leaves the
// page as it is.
func (d *Dispatcher) Run() bool {
	for {
		line, err := d.console.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.console.Println(fmt.Sprintf("读取命令失败: %v", err))
			}
			return false
		}
		exit, err := d.execute(line)
		if err != nil {
			d.console.Println(fmt.Sprintf("错误: %v", err))
			continue
		}
		if exit {
			return true
		}
	}
}

// Execute runs a single command.
func (d *Dispatcher) Execute(raw string) error {
	_, err := d.execute(raw)
	return err
}

func (d *Dispatcher) execute(raw string) (bool, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	ctrl := d.page.View.Controller()

	switch cmd {
	case "start":
		if err := ctrl.Start(); err != nil {
			if errors.Is(err, controller.ErrAlreadyRunning) {
				return false, errors.New("计时器已在运行")
			}
			return false, err
		}
		d.console.Println("已启动计时器")
	case "stop":
		ctrl.Stop()
		d.console.Println("已停止计时器")
	case "status":
		d.printStatus()
	case "log", "log-on", "log-off":
		mode, err := logMode(cmd, args)
		if err != nil {
			return false, err
		}
		if d.page.TimeLog == nil {
			return false, errors.New("当前页面未启用时间日志")
		}
		if mode {
			d.page.TimeLog.Enable()
			d.console.Println("已开启日志")
		} else {
			d.page.TimeLog.Disable()
			d.console.Println("已关闭日志")
		}
	case "pages":
		d.printPages()
	case "help":
		d.console.Println("命令: start | stop | status | log on|off | pages | help | exit")
	case "exit", "quit":
		ctrl.Stop()
		d.console.Println("已退出")
		return true, nil
	default:
		return false, fmt.Errorf("未知命令: %s", cmd)
	}
	return false, nil
}

func logMode(cmd string, args []string) (bool, error) {
	switch cmd {
	case "log-on":
		return true, nil
	case "log-off":
		return false, nil
	}
	if len(args) != 1 {
		return false, errors.New("用法: log on|off")
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, errors.New("用法: log on|off")
	}
}

func (d *Dispatcher) printStatus() {
	ctrl := d.page.View.Controller()
	state := "已停止"
	if ctrl.Running() {
		state = "运行中"
	}
	d.console.Println(fmt.Sprintf("页面: %s  状态: %s  间隔: %s", d.page.ID, state, ctrl.Interval()))
	if t, ok := d.page.Model.Time(); ok {
		d.console.Println(d.page.View.Text(t))
	}
	if d.page.Metrics != nil {
		d.console.Println("运行时长: " + metrics.FormatDuration(d.page.Metrics.Uptime()))
	}
}

func (d *Dispatcher) printPages() {
	for _, id := range d.registry.IDs() {
		mark := " "
		if id == d.page.ID {
			mark = "*"
		}
		d.console.Println(fmt.Sprintf("%s %s", mark, id))
	}
}
